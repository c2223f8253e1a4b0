package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tunecast/internal/youtube"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var secrets string
	var noStoredAuth bool

	cmd := &cobra.Command{
		Use:   "status VIDEO_ID",
		Short: "Check the processing status of an uploaded video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			secretsPath := cfg.SecretsFile
			if secrets != "" {
				secretsPath = secrets
			}
			client, err := youtube.NewClient(cmd.Context(), youtube.AuthOptions{
				SecretsPath:  secretsPath,
				TokenPath:    cfg.TokenFile,
				NoStoredAuth: noStoredAuth,
				Prompt:       cmd.ErrOrStderr(),
				CodeInput:    cmd.InOrStdin(),
			})
			if err != nil {
				return err
			}

			uploader := youtube.NewUploader(client, logger)
			videoID := strings.TrimSpace(args[0])
			status, err := uploader.CheckStatus(cmd.Context(), videoID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video %s: %s\n", videoID, status)
			if status == youtube.UploadStatusProcessed {
				fmt.Fprintln(out, youtube.WatchURL(videoID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&secrets, "secrets", "", "OAuth client secrets JSON file")
	cmd.Flags().BoolVar(&noStoredAuth, "no-stored-auth", false, "Ignore the cached OAuth token and authorize again")
	return cmd
}
