package testsupport

import (
	"context"
	"testing"

	"recast/internal/config"
	"recast/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(context.Background(), cfg.Paths.QueueDB)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAdd enqueues a request for tests using the provided store.
func MustAdd(t testing.TB, store *queue.Store, req queue.Request) *queue.Request {
	t.Helper()

	added, err := store.Add(context.Background(), req)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return added
}
