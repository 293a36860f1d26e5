// Package notifications delivers recast events to ntfy and Pushover.
//
// NewService inspects the notifications section of the configuration and
// returns a fan-out over every configured backend, or a no-op when none is
// set. Callers publish an Event with a small Payload; the service renders the
// title and message so every backend shows the same text. Delivery is best
// effort and callers are expected to log, not act on, returned errors.
package notifications
