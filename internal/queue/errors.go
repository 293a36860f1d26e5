package queue

import "errors"

var (
	// ErrNotFound is returned by GetByID when no row has the requested identity.
	ErrNotFound = errors.New("queue request not found")
	// ErrInvalidPath rejects empty or relative source paths at enqueue time.
	ErrInvalidPath = errors.New("queue request path must be absolute")
)
