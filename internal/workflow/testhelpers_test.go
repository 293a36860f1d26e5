package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"recast/internal/config"
	"recast/internal/encoding"
	"recast/internal/media/ffprobe"
	"recast/internal/notifications"
	"recast/internal/queue"
	"recast/internal/testsupport"
	"recast/internal/workflow"
)

type stubProber struct {
	result ffprobe.Result
	err    error
	calls  []string
}

func (p *stubProber) Probe(_ context.Context, path string) (ffprobe.Result, error) {
	p.calls = append(p.calls, path)
	return p.result, p.err
}

// stubEncoder writes logBody to a log file and, when output is set, writes
// it to the last argument before returning result.
type stubEncoder struct {
	t       *testing.T
	logDir  string
	logBody string
	output  string
	result  encoding.RunResult
	err     error
	calls   [][]string
}

func (e *stubEncoder) Encode(_ context.Context, args []string, sink encoding.LineSink) (encoding.RunResult, error) {
	e.calls = append(e.calls, args)
	if e.err != nil {
		return encoding.RunResult{}, e.err
	}
	logPath := filepath.Join(e.logDir, "transcode.log")
	if err := os.WriteFile(logPath, []byte(e.logBody), 0o644); err != nil {
		e.t.Fatalf("write stub log: %v", err)
	}
	if sink != nil {
		sink("frame=1")
	}
	if e.output != "" {
		if err := os.WriteFile(args[len(args)-1], []byte(e.output), 0o644); err != nil {
			e.t.Fatalf("write stub output: %v", err)
		}
	}
	result := e.result
	result.LogPath = logPath
	return result, nil
}

type published struct {
	event   notifications.Event
	payload notifications.Payload
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{event: event, payload: payload})
	return nil
}

func (n *recordingNotifier) kinds() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifications.Event, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.event)
	}
	return out
}

type rescanCall struct {
	contentID int64
	path      string
}

type recordingRescanner struct {
	calls []rescanCall
}

func (r *recordingRescanner) Rescan(_ context.Context, contentID int64, path string) {
	r.calls = append(r.calls, rescanCall{contentID: contentID, path: path})
}

type harness struct {
	cfg       *config.Config
	store     *queue.Store
	prober    *stubProber
	encoder   *stubEncoder
	notifier  *recordingNotifier
	rescanner *recordingRescanner
	lines     []string
	worker    *workflow.Worker
	library   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.IterationDelay = 0
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.Workflow.PollInterval = 1

	h := &harness{
		cfg:   cfg,
		store: testsupport.MustOpenStore(t, cfg),
		prober: &stubProber{result: ffprobe.Result{Streams: []ffprobe.Stream{
			{Index: 0, CodecType: "video", CodecName: "h264"},
			{Index: 1, CodecType: "audio", CodecName: "aac", Tags: ffprobe.Tags{Language: "eng"}},
		}}},
		encoder:   &stubEncoder{t: t, logDir: t.TempDir(), output: "encoded", logBody: "frame=1\n"},
		notifier:  &recordingNotifier{},
		rescanner: &recordingRescanner{},
		library:   filepath.Join(testsupport.BaseDir(cfg), "library"),
	}
	h.worker = workflow.NewWorker(cfg, workflow.Dependencies{
		Store:     h.store,
		Prober:    h.prober,
		Encoder:   h.encoder,
		Rescanner: h.rescanner,
		Notifier:  h.notifier,
		Lines: func(_ int64, line string) {
			h.lines = append(h.lines, line)
		},
	}, nil, workflow.WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
	return h
}

// source creates a media file in the library and returns its path.
func (h *harness) source(t *testing.T, rel string, size int64) string {
	t.Helper()
	path := filepath.Join(h.library, rel)
	testsupport.WriteFile(t, path, size)
	return path
}

func (h *harness) enqueue(t *testing.T, req queue.Request) *queue.Request {
	t.Helper()
	return testsupport.MustAdd(t, h.store, req)
}

func (h *harness) queueSize(t *testing.T) int {
	t.Helper()
	n, err := h.store.Size(context.Background())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	return n
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
