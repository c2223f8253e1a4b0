// Package pipeline runs one encode-and-upload pass end to end.
//
// A run encodes the audio/image pair into a video, formats the title and
// description from the audio tags, uploads the result, and records the
// outcome in the history store. A file lock on the staging directory keeps
// concurrent runs from trampling each other's intermediate files.
package pipeline
