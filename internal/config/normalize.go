package config

import "strings"

// normalize expands all path fields and trims list entries.
func (c *Config) normalize() error {
	pathFields := []*string{
		&c.StagingDir,
		&c.LogDir,
		&c.TitlesFile,
		&c.DescriptionFile,
		&c.SecretsFile,
		&c.TokenFile,
	}
	for _, field := range pathFields {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.FFmpegBinary = strings.TrimSpace(c.FFmpegBinary)
	c.FFprobeBinary = strings.TrimSpace(c.FFprobeBinary)
	c.Privacy = strings.ToLower(strings.TrimSpace(c.Privacy))
	c.Category = strings.TrimSpace(c.Category)
	c.Keywords = trimList(c.Keywords)
	c.TitleVars = trimList(c.TitleVars)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	return nil
}

func trimList(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if clean := strings.TrimSpace(value); clean != "" {
			trimmed = append(trimmed, clean)
		}
	}
	return trimmed
}

// SplitList parses a comma-separated flag value into a trimmed list.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return trimList(strings.Split(value, ","))
}
