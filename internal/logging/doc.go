// Package logging assembles structured slog loggers and formatting helpers used
// across recast.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so worker code can tag log lines with queue
// item IDs and attempt IDs. The StreamHub buffers recent log events and encoder
// output lines for live consumers such as the websocket endpoint.
package logging
