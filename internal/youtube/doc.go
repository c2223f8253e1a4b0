// Package youtube uploads finished videos to YouTube over the resumable
// upload protocol.
//
// An upload starts with a metadata POST that opens a session; the file body
// is then sent in chunks against the session URL. Transient failures
// (network errors and 500/502/503/504 responses) are retried with randomized
// exponential backoff up to a fixed ceiling, resuming from the offset the
// session reports as committed. Any other failure aborts the upload
// immediately.
//
// The package also covers OAuth client construction from an installed-app
// client secrets file with a cached token, category name/ID resolution, and
// a post-upload processing status check through the YouTube Data API.
package youtube
