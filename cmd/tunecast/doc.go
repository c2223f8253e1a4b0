// Package main hosts the tunecast CLI entrypoint and command graph.
//
// The Cobra-based command tree turns a terminal invocation into one
// encode-and-upload run: resolve configuration, build the ffmpeg encoder and
// the authenticated YouTube uploader, and hand both to the pipeline. History
// listing, upload status checks, and configuration scaffolding live in their
// own subcommands.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
