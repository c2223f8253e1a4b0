package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var verboseFlag, quietFlag bool

	ctx := newCommandContext(&configFlag, &verboseFlag, &quietFlag)
	opts := &uploadOptions{}

	rootCmd := &cobra.Command{
		Use:           "tunecast AUDIO_FILE IMAGE_FILE",
		Short:         "Combine audio and a still image into a video and upload it to YouTube",
		Args:          cobra.ExactArgs(2),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, ctx, opts, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug detail, including full tool output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Log warnings and errors only")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Where to write the generated video (defaults to the staging directory)")
	flags.StringVar(&opts.secrets, "secrets", "", "OAuth client secrets JSON file")
	flags.StringVar(&opts.privacy, "privacy", "", "Video privacy: public, private, or unlisted")
	flags.StringVar(&opts.category, "category", "", "Video category ID or name")
	flags.StringVarP(&opts.keywords, "keywords", "k", "", "Comma-separated video keywords")
	flags.StringVarP(&opts.title, "title", "t", "", "Fixed video title (disables the dynamic title)")
	flags.StringVar(&opts.titleVars, "title-vars", "", "Comma-separated tag names joined into the dynamic title")
	flags.StringVar(&opts.titleSep, "title-sep", "", "Separator between dynamic title parts")
	flags.StringVarP(&opts.description, "description", "d", "", "Base description text")
	flags.BoolVar(&opts.addMetadata, "add-metadata", true, "Append the audio tags to the description")
	flags.BoolVar(&opts.generateOnly, "generate-only", false, "Generate the video but do not upload it")
	flags.BoolVar(&opts.noStoredAuth, "no-stored-auth", false, "Ignore the cached OAuth token and authorize again")
	rootCmd.MarkFlagsMutuallyExclusive("title", "title-vars")

	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
