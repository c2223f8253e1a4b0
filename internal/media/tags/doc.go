// Package tags ingests audio metadata from ffprobe output into a normalized
// tag list.
//
// Raw tag dictionaries are messy: keys vary between ID3 frame names, Vorbis
// comment names, and ffprobe's own lowercase spellings, and repeated Vorbis
// comments arrive as a single delimited value. Ingestion resolves every raw
// value into a Value variant (scalar or multi-value), attaches a canonical
// lowercase name plus a human-readable display name, and marks binary
// picture frames so downstream rendering can skip them.
//
// The tag list is ordered by raw key so description rendering stays stable
// between runs.
package tags
