package config

import (
	"errors"
	"fmt"
)

var validPrivacies = map[string]struct{}{
	"public":   {},
	"private":  {},
	"unlisted": {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.FFmpegBinary == "" {
		return errors.New("config: ffmpeg_binary must not be empty")
	}
	if c.FFprobeBinary == "" {
		return errors.New("config: ffprobe_binary must not be empty")
	}
	if c.StagingDir == "" {
		return errors.New("config: staging_dir must not be empty")
	}
	if c.LogDir == "" {
		return errors.New("config: log_dir must not be empty")
	}
	if _, ok := validPrivacies[c.Privacy]; !ok {
		return fmt.Errorf("config: privacy must be public, private, or unlisted; got %q", c.Privacy)
	}
	if c.Category == "" {
		return errors.New("config: category must not be empty")
	}
	if c.ChunkMiB <= 0 {
		return fmt.Errorf("config: upload_chunk_mib must be positive; got %d", c.ChunkMiB)
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("config: log_level must be debug, info, warn, or error; got %q", c.LogLevel)
	}
	if _, ok := validLogFormats[c.LogFormat]; !ok {
		return fmt.Errorf("config: log_format must be console or json; got %q", c.LogFormat)
	}
	return nil
}
