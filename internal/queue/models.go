package queue

import (
	"strings"
	"time"
)

// Request is one pending transcode job.
type Request struct {
	ID          int64
	Path        string
	Languages   string
	VideoParams string
	AudioParams string
	// ContentID references the Radarr movie or Sonarr series to rescan. Nil
	// disables rescanning.
	ContentID *int64
	CreatedAt time.Time
}

// ReencodesVideo reports whether the primary video stream gets encode parameters.
func (r Request) ReencodesVideo() bool {
	return strings.TrimSpace(r.VideoParams) != ""
}

// ReencodesAudio reports whether kept audio streams get encode parameters.
func (r Request) ReencodesAudio() bool {
	return strings.TrimSpace(r.AudioParams) != ""
}

// ContentIDValue returns the content id, or 0 when absent.
func (r Request) ContentIDValue() int64 {
	if r.ContentID == nil {
		return 0
	}
	return *r.ContentID
}

// ContentIDPtr is a convenience for building requests with a content id.
func ContentIDPtr(id int64) *int64 {
	return &id
}
