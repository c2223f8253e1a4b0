// Package logging constructs the slog logger used across tunecast.
//
// Two output formats are supported: a compact console format
// ("TIME LEVEL component: message k=v") for interactive runs, and JSON for
// log files and machine consumption. Output goes to stdout and, when a log
// directory is configured, to a log file as well.
package logging
