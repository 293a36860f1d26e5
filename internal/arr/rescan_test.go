package arr_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"recast/internal/arr"
)

type recordingRescanner struct {
	calls []string
	err   error
}

func (r *recordingRescanner) RescanMovie(_ context.Context, id int64) error {
	r.calls = append(r.calls, "movie")
	return r.err
}

func (r *recordingRescanner) RescanSeries(_ context.Context, id int64) error {
	r.calls = append(r.calls, "series")
	return r.err
}

func TestRescanRoutesByRootFolder(t *testing.T) {
	radarr := &recordingRescanner{}
	sonarr := &recordingRescanner{}
	var slept []time.Duration
	rescanner := &arr.Rescanner{
		Radarr:      radarr,
		RadarrRoot:  "/movies",
		RadarrDelay: 5 * time.Second,
		Sonarr:      sonarr,
		SonarrRoot:  "/tv",
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	ctx := context.Background()
	rescanner.Rescan(ctx, 1, "/movies/Arrival/Arrival-TRANSCODED.mkv")
	if len(radarr.calls) != 2 || len(slept) != 1 || slept[0] != 5*time.Second {
		t.Fatalf("expected two radarr rescans with a delay, got calls=%v slept=%v", radarr.calls, slept)
	}

	rescanner.Rescan(ctx, 2, "/tv/Dark/S01E01-TRANSCODED.mkv")
	if len(sonarr.calls) != 1 {
		t.Fatalf("expected one sonarr rescan, got %v", sonarr.calls)
	}

	rescanner.Rescan(ctx, 3, "/elsewhere/file.mkv")
	if len(radarr.calls) != 2 || len(sonarr.calls) != 1 {
		t.Fatalf("unexpected rescans for unowned path")
	}
}

func TestRescanSwallowsErrors(t *testing.T) {
	radarr := &recordingRescanner{err: errors.New("boom")}
	rescanner := &arr.Rescanner{
		Radarr:     radarr,
		RadarrRoot: "/movies",
		Sleep: func(context.Context, time.Duration) error {
			t.Fatalf("should not wait after a failed rescan")
			return nil
		},
	}
	rescanner.Rescan(context.Background(), 1, "/movies/a.mkv")
	if len(radarr.calls) != 1 {
		t.Fatalf("expected a single attempt, got %v", radarr.calls)
	}
}

func TestRescanWithoutClientsIsNoop(t *testing.T) {
	var rescanner *arr.Rescanner
	rescanner.Rescan(context.Background(), 1, "/movies/a.mkv")
	(&arr.Rescanner{RadarrRoot: "/movies"}).Rescan(context.Background(), 1, "/movies/a.mkv")
}
