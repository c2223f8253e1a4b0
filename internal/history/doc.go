// Package history persists upload runs in SQLite.
//
// Every invocation records a row when encoding finishes and updates it as
// the upload succeeds or fails, so past runs and their video IDs can be
// listed later. The database lives next to the log files and is treated as
// a lightweight archive; schema changes bump the version in schema.go.
package history
