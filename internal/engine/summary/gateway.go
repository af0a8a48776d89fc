// Package summary turns a transcript into a formatted summary through one of
// several interchangeable model backends: a local Ollama server, the OpenAI
// and Anthropic APIs, or any OpenAI-compatible endpoint.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
)

// Gateway dispatches summary requests. It is immutable after construction
// and safe for concurrent use.
type Gateway struct {
	client  *http.Client
	timeout time.Duration
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.client = c }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// NewGateway creates a Gateway bounded by engine.Cfg.LLMTimeout.
func NewGateway(opts ...GatewayOption) *Gateway {
	g := &Gateway{timeout: engine.Cfg.LLMTimeout}
	for _, o := range opts {
		o(g)
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: g.timeout}
	}
	return g
}

// Summarize builds the prompt for transcript and sends it to opts.Provider.
// Missing credentials fail with *ConfigurationError before any request is
// made; backend failures are *UpstreamError.
func (g *Gateway) Summarize(ctx context.Context, transcript string, opts Options, cfg ProviderConfig) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	if opts.Provider == "" {
		opts.Provider = ProviderLocal
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	cfg = cfg.withDefaults(opts.Provider)
	if err := cfg.validate(opts.Provider); err != nil {
		return "", err
	}

	prompt := BuildPrompt(engine.CapTranscript(transcript), opts)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	engine.IncrSummaryCalls()
	start := time.Now()
	var (
		out string
		err error
	)
	switch opts.Provider {
	case ProviderLocal:
		out, err = g.callLocal(ctx, prompt, opts, cfg)
	case ProviderOpenAI:
		out, err = g.callCompatible(ctx, ProviderOpenAI, prompt, opts, cfg)
	case ProviderAnthropic:
		out, err = g.callAnthropic(ctx, prompt, opts, cfg)
	case ProviderCustom:
		out, err = g.callCompatible(ctx, ProviderCustom, prompt, opts, cfg)
	}
	if err != nil {
		engine.IncrSummaryErrors()
		slog.Warn("summary: provider call failed",
			slog.String("provider", string(opts.Provider)), slog.String("model", cfg.Model), slog.Any("err", err))
		return "", err
	}
	slog.Debug("summary: done",
		slog.String("provider", string(opts.Provider)),
		slog.Int("chars", len(out)),
		slog.Duration("took", time.Since(start)))
	return strings.TrimSpace(out), nil
}
