// Command recast runs the transcode daemon and the operator CLI.
//
// "recast daemon" hosts the worker, the download webhook and housekeeping.
// Every other subcommand opens the queue database directly, so queue edits
// work whether or not the daemon is running; the daemon notices new rows
// through its queue watcher or its next poll.
package main
