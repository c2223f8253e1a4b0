// Package config loads, normalizes, and validates tunecast configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: tool binaries, staging and log directories, credential
// paths, and upload defaults. Flags may override individual fields after
// loading.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
