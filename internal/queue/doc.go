// Package queue persists pending transcode requests in SQLite.
//
// The Store is a durable FIFO: Add appends, PeekOldest returns the lowest
// identity without mutating anything, and Remove deletes by identity and is
// idempotent. Deciding when a request leaves the queue is the worker's job.
// The schema is evolved only through additive migrations recorded in
// schema_migrations so several binaries can share one database file.
package queue
