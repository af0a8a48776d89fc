package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_tubesum/internal/config"
	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/summary"
	"github.com/anatolykoptev/go_tubesum/internal/tubeserver"
)

func newTranscriptCmd(opts *rootOptions) *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "transcript VIDEO",
		Short: "Print the transcript of a video",
		Long:  `Extract the transcript of a video given its URL or 11-character ID. When no strategy succeeds an explanatory placeholder is printed instead.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc *tubeserver.Service) error {
				out, err := svc.Transcript(ctx, engine.TranscriptInput{Video: args[0], Fresh: fresh})
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Text)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Bypass the result cache")
	return cmd
}

func newMetadataCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata VIDEO",
		Short: "Print title, author, views and duration of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc *tubeserver.Service) error {
				out, err := svc.Metadata(ctx, engine.MetadataInput{Video: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newChannelCmd(opts *rootOptions) *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "channel URL",
		Short: "Print channel name, subscribers and verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc *tubeserver.Service) error {
				out, err := svc.Channel(ctx, engine.ChannelInput{URL: args[0], Fresh: fresh})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Bypass the result cache")
	return cmd
}

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var (
		in          engine.SummarizeInput
		textFile    string
		temperature float64
	)
	cmd := &cobra.Command{
		Use:   "summarize [VIDEO]",
		Short: "Summarize a video transcript or a text file",
		Long: `Summarize the transcript of VIDEO, or the text read from --file (use - for stdin).
Provider credentials come from the config file and environment; flags override them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := summarizeInput(cmd, in, args, textFile, temperature)
			if err != nil {
				return err
			}
			return withService(cmd, opts, func(ctx context.Context, svc *tubeserver.Service) error {
				out, err := svc.Summarize(ctx, input)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Summary)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&textFile, "file", "f", "", "Summarize text from this file instead of a video (- for stdin)")
	f.StringVarP(&in.Provider, "provider", "p", "", "local, openai, anthropic or custom")
	f.StringVar(&in.Format, "format", "", "markdown or plain")
	f.StringVar(&in.Bullet, "bullet", "", "Bullet glyph for list items")
	f.BoolVar(&in.IncludeTimestamps, "timestamps", false, "Ask for timestamp references")
	f.BoolVar(&in.IncludeQuotes, "quotes", false, "Ask for notable quotes")
	f.IntVar(&in.MaxTokens, "max-tokens", 0, "Generation length limit")
	f.Float64Var(&temperature, "temperature", 0, "Sampling temperature between 0 and 1")
	f.StringVar(&in.Model, "model", "", "Model name override")
	f.StringVar(&in.BaseURL, "base-url", "", "Provider endpoint override")
	f.StringVar(&in.APIKey, "api-key", "", "API key override")
	f.StringToStringVarP(&in.ExtraHeaders, "header", "H", nil, "Extra HTTP header as key=value (custom provider)")
	return cmd
}

// summarizeInput combines flags and arguments into one request.
func summarizeInput(cmd *cobra.Command, in engine.SummarizeInput, args []string, textFile string, temperature float64) (engine.SummarizeInput, error) {
	if len(args) == 1 {
		in.Video = args[0]
	}
	if textFile != "" {
		if in.Video != "" {
			return in, errors.New("pass either VIDEO or --file, not both")
		}
		text, err := readText(cmd, textFile)
		if err != nil {
			return in, err
		}
		in.Text = text
	}
	if in.Video == "" && strings.TrimSpace(in.Text) == "" {
		return in, errors.New("nothing to summarize: pass VIDEO or --file")
	}
	if cmd.Flags().Changed("temperature") {
		in.Temperature = &temperature
	}
	return in, nil
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var in engine.HistoryInput
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcript, metadata, channel and summary tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc *tubeserver.Service) error {
				out, err := svc.ListHistory(ctx, in)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CREATED\tKIND\tSUBJECT\tSTATUS\tDETAIL")
				for _, e := range out.Entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.CreatedAt, e.Kind, e.Subject, e.Status, engine.TruncateRunes(e.Detail, 60, "..."))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&in.Kind, "kind", "", "transcript, metadata, channel or summary")
	cmd.Flags().IntVarP(&in.Limit, "limit", "n", 20, "Max entries")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a commented configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath()
			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.LoadFile(config.ResolvePath())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if c.Path == "" {
				fmt.Fprintf(w, "Configuration file: %s (not found, using defaults)\n", config.ResolvePath())
			} else {
				fmt.Fprintf(w, "Configuration file: %s\n", c.Path)
			}
			d := c.Defaults
			fmt.Fprintf(w, "provider=%s format=%s bullet=%q max_tokens=%d temperature=%g\n",
				d.Provider, d.Format, d.Bullet, d.MaxTokens, d.Temperature)
			for _, p := range summary.Providers {
				pc := c.Providers[p]
				fmt.Fprintf(w, "%-10s api_key=%s base_url=%s model=%s\n", p, mask(pc.APIKey), orDash(pc.BaseURL), orDash(pc.Model))
			}
			return nil
		},
	})
	return cmd
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return "-"
	case len(secret) <= 4:
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
