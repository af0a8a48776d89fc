// Package youtube extracts transcripts, page metadata and channel details
// from YouTube. Every extractor degrades to best-effort values instead of
// failing: strategy errors are logged and skipped.
package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
)

// minTranscriptLen is the length a transcript must exceed to be accepted.
const minTranscriptLen = 10

// PlaceholderStrategy names results produced when every strategy failed.
const PlaceholderStrategy = "placeholder"

// Strategy is one independent way of obtaining a transcript.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, id VideoID) (TranscriptResult, error)
}

// Extractor runs its strategies in order until one yields a usable
// transcript. It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	baseURL    string
	delay      time.Duration
	fetcher    TranscriptFetcher
	strategies []Strategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBaseURL points every request at base instead of Cfg.SourceBaseURL.
func WithBaseURL(base string) Option {
	return func(e *Extractor) { e.baseURL = strings.TrimRight(base, "/") }
}

// WithAttemptDelay overrides the pause between failed third-party variants.
func WithAttemptDelay(d time.Duration) Option {
	return func(e *Extractor) { e.delay = d }
}

// WithTranscriptFetcher replaces the yt-dlp integration.
func WithTranscriptFetcher(f TranscriptFetcher) Option {
	return func(e *Extractor) { e.fetcher = f }
}

// WithStrategies replaces the default strategy chain.
func WithStrategies(s ...Strategy) Option {
	return func(e *Extractor) { e.strategies = s }
}

// NewExtractor builds an Extractor from engine.Cfg and opts.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		baseURL: strings.TrimRight(engine.Cfg.SourceBaseURL, "/"),
		delay:   engine.Cfg.AttemptDelay,
	}
	for _, o := range opts {
		o(e)
	}
	if e.fetcher == nil {
		e.fetcher = NewYtdlpFetcher(engine.Cfg.YtdlpPath, e.baseURL)
	}
	if e.strategies == nil {
		e.strategies = []Strategy{
			&ThirdPartyStrategy{Fetcher: e.fetcher, Delay: e.delay},
			&InnertubeStrategy{BaseURL: e.baseURL},
			&EmbeddedDataStrategy{BaseURL: e.baseURL},
			&DirectPageStrategy{BaseURL: e.baseURL},
		}
	}
	return e
}

// BaseURL returns the origin this extractor talks to.
func (e *Extractor) BaseURL() string { return e.baseURL }

// Extract returns the transcript of id. It always returns a result; when no
// strategy succeeds the text is an explanatory placeholder.
func (e *Extractor) Extract(ctx context.Context, id VideoID) TranscriptResult {
	engine.IncrTranscriptRequests()
	for _, s := range e.strategies {
		if ctx.Err() != nil {
			slog.Warn("youtube: transcript extraction cancelled",
				slog.String("id", string(id)), slog.Any("err", ctx.Err()))
			break
		}
		res, err := s.Attempt(ctx, id)
		if err == nil && !usable(res.Text) {
			err = ErrEmptyTranscript
		}
		if err != nil {
			engine.IncrStrategy(s.Name(), false)
			slog.Warn("youtube: transcript strategy failed",
				slog.String("id", string(id)), slog.String("strategy", s.Name()), slog.Any("err", err))
			continue
		}
		engine.IncrStrategy(s.Name(), true)
		res.Text = strings.TrimSpace(res.Text)
		res.Strategy = s.Name()
		return res
	}

	engine.IncrPlaceholder()
	return e.placeholder(ctx, id)
}

func (e *Extractor) placeholder(ctx context.Context, id VideoID) TranscriptResult {
	meta := UnknownMetadata()
	if ctx.Err() == nil {
		meta = e.FetchMetadata(ctx, id)
	}
	return TranscriptResult{
		Text:            PlaceholderText(id, meta),
		LanguageCode:    "",
		IsAutoGenerated: false,
		Strategy:        PlaceholderStrategy,
	}
}

// PlaceholderText explains a failed extraction. It describes the video and
// suggests alternatives; it never contains invented transcript content.
func PlaceholderText(id VideoID, meta VideoMetadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "We could not extract a transcript for %q by %s (video %s).\n\n", meta.Title, meta.Author, id)
	sb.WriteString("Captions may be disabled for this video, it may be age-restricted or region-locked, ")
	sb.WriteString("or the platform may be limiting automated requests right now.\n\n")
	sb.WriteString("Suggestions:\n")
	sb.WriteString("- Open the video and check whether captions (CC) are available.\n")
	sb.WriteString("- Try again in a few minutes.\n")
	sb.WriteString("- Paste a transcript you already have and summarize it as text.\n")
	return sb.String()
}

// IsPlaceholder reports whether r is the terminal failure result.
func IsPlaceholder(r TranscriptResult) bool {
	return r.Strategy == PlaceholderStrategy
}

func usable(text string) bool {
	return len(strings.TrimSpace(text)) > minTranscriptLen
}
