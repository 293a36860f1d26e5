package workflow

import "recast/internal/encoding"

// OutcomeKind is the terminal state of one worker iteration.
type OutcomeKind string

const (
	// OutcomeIdle means the queue was empty.
	OutcomeIdle OutcomeKind = "idle"
	// OutcomeCompleted means the source was replaced by the transcoded file.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeSkipPermanent means the entry was dropped without output.
	OutcomeSkipPermanent OutcomeKind = "skip_permanent"
	// OutcomeRetryLater means the entry stays queued for another attempt.
	OutcomeRetryLater OutcomeKind = "retry_later"
)

// Outcome describes what happened to one queue entry.
type Outcome struct {
	Kind   OutcomeKind
	Class  encoding.Class
	Reason string
	ItemID int64
	// Path is the final file for completed entries, the source otherwise.
	Path string
	// FailedLog is the preserved encoder log for unclassified failures.
	FailedLog string
}

// KeepsEntry reports whether the queue row must stay in place.
func (o Outcome) KeepsEntry() bool {
	return o.Kind == OutcomeRetryLater || o.Kind == OutcomeIdle
}
