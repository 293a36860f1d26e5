// Package logstream follows the daemon's live encoder output over its
// websocket endpoint for "recast logs".
package logstream
