package notifications

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Event identifies a notification template.
type Event string

const (
	EventMovieDownloaded    Event = "movie_downloaded"
	EventEpisodeDownloaded  Event = "episode_downloaded"
	EventGrabbed            Event = "grabbed"
	EventTranscodeCompleted Event = "transcode_completed"
	EventTranscodeFailed    Event = "transcode_failed"
	EventCorruptInput       Event = "corrupt_input"
	EventEnvironment        Event = "environment"
	EventTest               Event = "test"
)

// Payload carries event values such as "title", "file", "error" or "log".
type Payload map[string]any

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) size(key string) (uint64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case uint64:
		return v, true
	}
	return 0, false
}

// message is a rendered notification.
type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

const (
	priorityHigh = "high"
	priorityLow  = "low"
)

func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventMovieDownloaded:
		return message{
			title: "recast - Downloaded",
			body:  "New movie downloaded: " + payload.text("title"),
			tags:  []string{"recast", "download", "movie"},
		}, true
	case EventEpisodeDownloaded:
		return message{
			title: "recast - Downloaded",
			body:  "New episode downloaded: " + payload.text("title"),
			tags:  []string{"recast", "download", "episode"},
		}, true
	case EventGrabbed:
		return message{
			title: "recast - Grabbed",
			body:  "File grabbed: " + payload.text("title"),
			tags:  []string{"recast", "grab"},
		}, true
	case EventTranscodeCompleted:
		body := "Transcode complete: " + payload.text("file")
		before, okBefore := payload.size("original_size")
		after, okAfter := payload.size("output_size")
		if okBefore && okAfter {
			body = fmt.Sprintf("%s (%s -> %s)", body, humanize.IBytes(before), humanize.IBytes(after))
		}
		return message{
			title: "recast - Transcoded",
			body:  body,
			tags:  []string{"recast", "transcode", "completed"},
		}, true
	case EventTranscodeFailed:
		body := "Transcode failed: " + payload.text("file")
		if reason := payload.text("error"); reason != "" {
			body += "\n" + reason
		}
		if logPath := payload.text("log"); logPath != "" {
			body += "\nLog: " + logPath
		}
		return message{
			title:    "recast - Transcode Failed",
			body:     body,
			tags:     []string{"recast", "transcode", "error"},
			priority: priorityHigh,
		}, true
	case EventCorruptInput:
		body := "Could not read media: " + payload.text("file")
		if reason := payload.text("error"); reason != "" {
			body += "\n" + reason
		}
		return message{
			title:    "recast - Unreadable Input",
			body:     body,
			tags:     []string{"recast", "probe", "error"},
			priority: priorityHigh,
		}, true
	case EventEnvironment:
		return message{
			title:    "recast - Encoder Unavailable",
			body:     "Encoder environment problem, will retry: " + payload.text("error"),
			tags:     []string{"recast", "environment", "alert"},
			priority: priorityHigh,
		}, true
	case EventTest:
		return message{
			title:    "recast - Test",
			body:     "Notification system test",
			tags:     []string{"recast", "test"},
			priority: priorityLow,
		}, true
	default:
		return message{}, false
	}
}
