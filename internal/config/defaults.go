package config

// Default returns the repository default configuration. Paths are expanded
// during normalization, not here.
func Default() Config {
	return Config{
		FFmpegBinary:    "ffmpeg",
		FFprobeBinary:   "ffprobe",
		StagingDir:      "~/.cache/tunecast/staging",
		LogDir:          "~/.local/share/tunecast/logs",
		TitlesFile:      "~/.config/tunecast/titles.txt",
		DescriptionFile: "~/.config/tunecast/description.txt",
		SecretsFile:     "~/.config/tunecast/client_secrets.json",
		TokenFile:       "~/.config/tunecast/oauth2_token.json",
		Privacy:         "unlisted",
		Category:        "10", // Music
		Keywords:        nil,
		TitleVars:       []string{"artist", "title"},
		TitleSeparator:  " - ",
		AddMetadata:     true,
		ChunkMiB:        8,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}
