package workflow

import "recast/internal/queue"

// StatusSummary represents lightweight worker diagnostics.
type StatusSummary struct {
	Running     bool
	CurrentItem *queue.Request
	LastOutcome *Outcome
	LastError   string
	Counts      map[OutcomeKind]int
}

// Status returns the latest worker information.
func (w *Worker) Status() StatusSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()

	summary := StatusSummary{
		Running: w.running,
		Counts:  make(map[OutcomeKind]int, len(w.counts)),
	}
	for kind, n := range w.counts {
		summary.Counts[kind] = n
	}
	if w.current != nil {
		copy := *w.current
		summary.CurrentItem = &copy
	}
	if w.last != nil {
		copy := *w.last
		summary.LastOutcome = &copy
	}
	if w.lastErr != nil {
		summary.LastError = w.lastErr.Error()
	}
	return summary
}

func (w *Worker) setRunning(running bool) {
	w.mu.Lock()
	w.running = running
	w.mu.Unlock()
}

func (w *Worker) setCurrent(req *queue.Request) {
	w.mu.Lock()
	if req != nil {
		copy := *req
		w.current = &copy
	} else {
		w.current = nil
	}
	w.mu.Unlock()
}

func (w *Worker) recordOutcome(outcome Outcome) {
	w.mu.Lock()
	w.last = &outcome
	w.counts[outcome.Kind]++
	w.mu.Unlock()
}

func (w *Worker) setLastError(err error) {
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
}
