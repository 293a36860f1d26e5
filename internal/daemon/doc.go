// Package daemon coordinates the long-running recast process.
//
// It wires configuration, queue storage, the transcode worker, the queue
// file watcher, the webhook listener and log retention into a single
// lifecycle with flock-based locking so only one worker ever drains a queue
// database. Startup runs the preflight checks and logs failures without
// refusing to start; the worker's own retry handling covers a missing encoder.
//
// Keep orchestration logic here: the worker, listener and clients live in
// their own packages while the daemon focuses on startup, shutdown and
// status.
package daemon
