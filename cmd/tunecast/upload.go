package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tunecast/internal/config"
	"tunecast/internal/history"
	"tunecast/internal/media/encode"
	"tunecast/internal/metadata"
	"tunecast/internal/pipeline"
	"tunecast/internal/youtube"
)

type uploadOptions struct {
	output       string
	secrets      string
	privacy      string
	category     string
	keywords     string
	title        string
	titleVars    string
	titleSep     string
	description  string
	addMetadata  bool
	generateOnly bool
	noStoredAuth bool
}

func runUpload(cmd *cobra.Command, ctx *commandContext, opts *uploadOptions, audioArg, imageArg string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	audioPath, err := config.ExpandPath(audioArg)
	if err != nil {
		return err
	}
	imagePath, err := config.ExpandPath(imageArg)
	if err != nil {
		return err
	}
	outputPath := ""
	if opts.output != "" {
		if outputPath, err = config.ExpandPath(opts.output); err != nil {
			return err
		}
	}

	privacy := cfg.Privacy
	if opts.privacy != "" {
		privacy = strings.ToLower(strings.TrimSpace(opts.privacy))
	}
	category := cfg.Category
	if opts.category != "" {
		category = opts.category
	}
	categoryID, err := youtube.ResolveCategory(category)
	if err != nil {
		return err
	}

	keywords := cfg.Keywords
	if cmd.Flags().Changed("keywords") {
		keywords = config.SplitList(opts.keywords)
	}

	formatter, err := buildFormatter(cmd, cfg, opts)
	if err != nil {
		return err
	}

	encoder := encode.New(cfg.FFmpegBinary, cfg.FFprobeBinary, logger, encode.WithVerbose(ctx.verbose()))

	var uploader pipeline.Uploader
	if !opts.generateOnly {
		secretsPath := cfg.SecretsFile
		if opts.secrets != "" {
			if secretsPath, err = config.ExpandPath(opts.secrets); err != nil {
				return err
			}
		}
		client, err := youtube.NewClient(cmd.Context(), youtube.AuthOptions{
			SecretsPath:  secretsPath,
			TokenPath:    cfg.TokenFile,
			NoStoredAuth: opts.noStoredAuth,
			Prompt:       cmd.ErrOrStderr(),
			CodeInput:    cmd.InOrStdin(),
		})
		if err != nil {
			return err
		}
		uploader = youtube.NewUploader(client, logger, youtube.WithChunkSize(cfg.ChunkSize()))
	}

	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := pipeline.New(cfg, logger, encoder, uploader, formatter, store)
	if err != nil {
		return err
	}

	result, err := p.Run(cmd.Context(), pipeline.Request{
		AudioPath:    audioPath,
		ImagePath:    imagePath,
		OutputPath:   outputPath,
		Keywords:     keywords,
		CategoryID:   categoryID,
		Privacy:      privacy,
		GenerateOnly: opts.generateOnly,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Uploaded {
		fmt.Fprintf(out, "Uploaded %q\n%s\n", result.Title, youtube.WatchURL(result.VideoID))
	} else {
		fmt.Fprintf(out, "Generated %s\n", result.OutputPath)
	}
	return nil
}

// buildFormatter combines config defaults with per-run flag overrides.
func buildFormatter(cmd *cobra.Command, cfg *config.Config, opts *uploadOptions) (*metadata.Formatter, error) {
	titleVars := cfg.TitleVars
	if cmd.Flags().Changed("title-vars") {
		titleVars = config.SplitList(opts.titleVars)
	}
	separator := cfg.TitleSeparator
	if cmd.Flags().Changed("title-sep") {
		separator = opts.titleSep
	}
	addMetadata := cfg.AddMetadata
	if cmd.Flags().Changed("add-metadata") {
		addMetadata = opts.addMetadata
	}

	template := opts.description
	if !cmd.Flags().Changed("description") {
		loaded, err := metadata.LoadTemplate(cfg.DescriptionFile)
		if err != nil {
			return nil, err
		}
		template = loaded
	}

	titles, err := metadata.LoadTitles(cfg.TitlesFile)
	if err != nil {
		return nil, err
	}

	return metadata.New(metadata.Config{
		Title:        opts.title,
		TitleVars:    titleVars,
		Separator:    separator,
		Template:     template,
		AddMetadata:  addMetadata,
		Titles:       titles,
		DefaultTitle: "Untitled upload",
	}), nil
}
