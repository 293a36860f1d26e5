package arr_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recast/internal/arr"
	"recast/internal/config"
)

func newArrServer(t *testing.T, handler http.HandlerFunc) *arr.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("expected api key header, got %q", got)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := arr.NewClient("radarr", config.Arr{URL: server.URL + "/", APIKey: "secret"}, server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresSettings(t *testing.T) {
	if _, err := arr.NewClient("sonarr", config.Arr{URL: "http://x"}, nil); !errors.Is(err, arr.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClientMovieAndQualityProfile(t *testing.T) {
	client := newArrServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/movie/42":
			_, _ = io.WriteString(w, `{"id":42,"title":"Arrival","year":2016,"path":"/movies/Arrival (2016)","qualityProfileId":7}`)
		case "/api/v3/qualityprofile":
			_, _ = io.WriteString(w, `[{"id":1,"name":"Any"},{"id":7,"name":"HD-1080p"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	movie, err := client.Movie(ctx, 42)
	if err != nil {
		t.Fatalf("Movie: %v", err)
	}
	if movie.Title != "Arrival" || movie.QualityProfileID != 7 {
		t.Fatalf("unexpected movie %+v", movie)
	}
	name, err := client.QualityProfileName(ctx, movie.QualityProfileID)
	if err != nil || name != "HD-1080p" {
		t.Fatalf("QualityProfileName = %q, %v", name, err)
	}
	if _, err := client.QualityProfileName(ctx, 99); !errors.Is(err, arr.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := client.Series(ctx, 1); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}

func TestClientRescanCommands(t *testing.T) {
	var commands []map[string]any
	client := newArrServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/command" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		commands = append(commands, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1}`)
	})

	ctx := context.Background()
	if err := client.RescanMovie(ctx, 5); err != nil {
		t.Fatalf("RescanMovie: %v", err)
	}
	if err := client.RescanSeries(ctx, 9); err != nil {
		t.Fatalf("RescanSeries: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("expected two commands, got %d", len(commands))
	}
	if commands[0]["name"] != "RescanMovie" {
		t.Fatalf("unexpected movie command %v", commands[0])
	}
	ids, ok := commands[0]["movieIds"].([]any)
	if !ok || len(ids) != 1 || ids[0] != float64(5) {
		t.Fatalf("unexpected movie ids %v", commands[0]["movieIds"])
	}
	if commands[1]["name"] != "RescanSeries" || commands[1]["seriesId"] != float64(9) {
		t.Fatalf("unexpected series command %v", commands[1])
	}
}
