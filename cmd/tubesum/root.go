package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_tubesum/internal/tubeserver"
)

type rootOptions struct {
	jsonOut bool
	verbose bool
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tubesum",
		Short:         "Extract and summarize YouTube transcripts",
		Long:          `Extract transcripts, video metadata and channel details from YouTube, and summarize transcripts with a local or hosted language model.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print the full result as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log strategy attempts and retries")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall deadline for the command")

	root.AddCommand(
		newTranscriptCmd(opts),
		newMetadataCmd(opts),
		newChannelCmd(opts),
		newSummarizeCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(),
	)
	return root
}

// withService runs fn with a configured Service and a deadline-bound context.
func withService(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, svc *tubeserver.Service) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	svc, cleanup, err := tubeserver.Setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// readText returns the contents of path, or stdin for "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript file: %w", err)
	}
	return string(data), nil
}
