// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties including tags
//   - Format: container-level metadata (duration, size, tags)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - ParseDuration: converts ffprobe's sexagesimal duration strings into
//     seconds, rejecting malformed input and durations of a day or longer
//
// Inspect requests sexagesimal durations so the same clock-format parser
// covers both the probe output and user-supplied duration strings.
package ffprobe
