// Package metadata synthesizes the video title and description from audio
// tags.
//
// Titles come in two modes: a fixed title string, or a dynamic title joined
// from configured tag names ("artist", "title", ...). When the dynamic join
// produces nothing, a fallback title is built from the rounded track length
// and a random line from the titles file.
//
// Descriptions start from a template and optionally append the tag list,
// with binary frames skipped and multiline values grouped after single-line
// ones.
package metadata
