package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "videoeditor",
	Short: "Run video editing operations through a method-call bridge",
	Long: `videoeditor exposes ffmpeg-backed video editing operations
(speed adjustment, trimming, merging, audio extraction, scaling, rotation,
thumbnails, compression and metadata) as named methods.

Each invocation runs as a cancellable operation. Methods can be called over
HTTP with "serve" or directly from the command line with "call".

Configuration is read from the environment (OUTPUT_DIR, FFMPEG_PATH, ...).

Example:
  videoeditor call adjustVideoSpeed --arg videoPath=/videos/in.mp4 --arg speed=2`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
