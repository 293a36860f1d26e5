package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recast/internal/config"
)

// ErrNotConfigured is returned by NewClient when the url or api key is missing.
var ErrNotConfigured = errors.New("arr: url and api key required")

// ErrProfileNotFound is returned when no quality profile has the requested id.
var ErrProfileNotFound = errors.New("arr: quality profile not found")

// HTTPDoer describes the HTTP client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Movie is the subset of a Radarr movie resource recast reads.
type Movie struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Year             int    `json:"year"`
	Path             string `json:"path"`
	QualityProfileID int64  `json:"qualityProfileId"`
}

// Series is the subset of a Sonarr series resource recast reads.
type Series struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Year             int    `json:"year"`
	Path             string `json:"path"`
	QualityProfileID int64  `json:"qualityProfileId"`
}

// QualityProfile is a named quality profile.
type QualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SystemStatus is returned by the status endpoint.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// Client issues requests against one Radarr or Sonarr instance.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewClient builds a client for the named service ("radarr" or "sonarr").
func NewClient(name string, cfg config.Arr, client HTTPDoer) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  client,
	}, nil
}

// Name returns the service label used in errors and logs.
func (c *Client) Name() string {
	return c.name
}

// Movie fetches a movie by its Radarr id.
func (c *Client) Movie(ctx context.Context, id int64) (Movie, error) {
	var movie Movie
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v3/movie/%d", id), nil, &movie)
	return movie, err
}

// Series fetches a series by its Sonarr id.
func (c *Client) Series(ctx context.Context, id int64) (Series, error) {
	var series Series
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v3/series/%d", id), nil, &series)
	return series, err
}

// QualityProfileName resolves a quality profile id to its name.
func (c *Client) QualityProfileName(ctx context.Context, id int64) (string, error) {
	var profiles []QualityProfile
	if err := c.do(ctx, http.MethodGet, "/api/v3/qualityprofile", nil, &profiles); err != nil {
		return "", err
	}
	for _, profile := range profiles {
		if profile.ID == id {
			return profile.Name, nil
		}
	}
	return "", fmt.Errorf("%s quality profile %d: %w", c.name, id, ErrProfileNotFound)
}

// RescanMovie asks Radarr to rescan the files of a movie.
func (c *Client) RescanMovie(ctx context.Context, id int64) error {
	body := map[string]any{"name": "RescanMovie", "movieIds": []int64{id}}
	return c.do(ctx, http.MethodPost, "/api/v3/command", body, nil)
}

// RescanSeries asks Sonarr to rescan the files of a series.
func (c *Client) RescanSeries(ctx context.Context, id int64) error {
	body := map[string]any{"name": "RescanSeries", "seriesId": id}
	return c.do(ctx, http.MethodPost, "/api/v3/command", body, nil)
}

// Status returns the service name and version.
func (c *Client) Status(ctx context.Context) (SystemStatus, error) {
	var status SystemStatus
	err := c.do(ctx, http.MethodGet, "/api/v3/system/status", nil, &status)
	return status, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.name, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s %s returned %d: %s", c.name, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}
