// Package webhook hosts recast's HTTP listener.
//
// Radarr and Sonarr post their "On Download" and "On Grab" webhooks to the
// root path. Downloads are resolved to a transcoding profile through the
// title's quality profile and enqueued; grabs only notify. The same gin
// engine serves a health probe, a read-only queue listing, worker status and
// a websocket that streams live encoder output from the logging StreamHub.
package webhook
