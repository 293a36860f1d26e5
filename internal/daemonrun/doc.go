// Package daemonrun hosts the process-level setup for "recast daemon":
// signal handling, the per-run log file and its recast.log pointer, the pid
// file and the dependency snapshot logged at startup.
package daemonrun
