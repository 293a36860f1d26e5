// Package arr talks to Radarr and Sonarr.
//
// Client wraps the v3 REST endpoints recast needs: title lookups, quality
// profile names and rescan commands. PathMapper rewrites paths reported by
// those services into paths visible on this host, and Rescanner tells the
// owning service about a replaced file once a transcode lands.
package arr
