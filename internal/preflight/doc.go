// Package preflight provides readiness checks for the encoder binaries,
// working directories, free disk space and library services recast depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs every failed check as a
//     warning; the worker still starts so a fixed environment recovers
//     without a restart.
//   - The CLI "recast status" command renders the same results as a table.
//
// Library service checks are gated by their config: an unconfigured Radarr or
// Sonarr instance is skipped rather than reported as failing.
package preflight
