package webhook

import "strings"

const (
	eventDownload = "Download"
	eventGrab     = "Grab"
)

// event is the subset of the Radarr/Sonarr webhook body recast reads.
type event struct {
	EventType      string       `json:"eventType"`
	IsUpgrade      bool         `json:"isUpgrade"`
	DownloadClient string       `json:"downloadClient"`
	Release        *release     `json:"release"`
	Movie          *movieRef    `json:"movie"`
	MovieFile      *fileRef     `json:"movieFile"`
	Series         *seriesRef   `json:"series"`
	EpisodeFile    *fileRef     `json:"episodeFile"`
	Episodes       []episodeRef `json:"episodes"`
}

type release struct {
	ReleaseTitle string `json:"releaseTitle"`
}

type movieRef struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	FolderPath string `json:"folderPath"`
}

type seriesRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type episodeRef struct {
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
}

type fileRef struct {
	RelativePath string `json:"relativePath"`
}

func (e event) grabTitle() string {
	title := ""
	if e.Release != nil {
		title = strings.TrimSpace(e.Release.ReleaseTitle)
	}
	if client := strings.TrimSpace(e.DownloadClient); client != "" {
		title += " (" + client + ")"
	}
	return strings.TrimSpace(title)
}
