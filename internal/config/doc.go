// Package config loads, normalizes, and validates recast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as RECAST_RADARR_API_KEY. The Config type
// centralizes every knob the daemon and CLI need: queue and log locations,
// encoder binaries, transcoding profiles, Radarr/Sonarr endpoints, and
// notification credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
