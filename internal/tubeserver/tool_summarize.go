package tubeserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/summary"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

func registerSummarize(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolutil.KindSummary,
		Description: "Summarize a transcript with a language model. Pass transcript text, or a video URL/ID to extract its transcript first. Providers: local (Ollama), openai, anthropic, custom (OpenAI-compatible). The summary has six sections: topic, key insights, highlights, real-world relevance, action items, closing. Credentials come from the config file or environment; api_key/base_url/model in the request override them.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, SummaryOutput, error) {
		out, err := svc.Summarize(ctx, input)
		return nil, out, err
	})
}

// Summarize summarizes input.Text, or the transcript of input.Video when no
// text is given.
func (s *Service) Summarize(ctx context.Context, input engine.SummarizeInput) (SummaryOutput, error) {
	var out SummaryOutput
	text := strings.TrimSpace(input.Text)
	subject := "text"

	if text == "" {
		if strings.TrimSpace(input.Video) == "" {
			return out, errors.New("text or video is required")
		}
		tr, err := s.Transcript(ctx, engine.TranscriptInput{Video: input.Video})
		if err != nil {
			return out, err
		}
		subject = tr.VideoID
		if tr.Placeholder {
			toolutil.Record(ctx, s.History, toolutil.KindSummary, subject, history.StatusError, ErrNoTranscript.Error())
			return out, fmt.Errorf("%w for video %s", ErrNoTranscript, tr.VideoID)
		}
		text = tr.Text
		out.VideoID = tr.VideoID
		out.TranscriptStrategy = tr.Strategy
	}

	opts, err := s.summaryOptions(input)
	if err != nil {
		return out, err
	}
	pc := s.Config.Provider(opts.Provider, summary.ProviderConfig{
		APIKey:       input.APIKey,
		BaseURL:      input.BaseURL,
		Model:        input.Model,
		ExtraHeaders: input.ExtraHeaders,
	})

	result, err := s.Gateway.Summarize(ctx, text, opts, pc)
	if err != nil {
		err = explain(err)
		toolutil.Record(ctx, s.History, toolutil.KindSummary, subject, history.StatusError, err.Error())
		return out, err
	}

	out.Summary = result
	out.Provider = string(opts.Provider)
	out.Format = string(opts.Format)
	out.TranscriptChars = utf8.RuneCountInString(text)
	toolutil.Record(ctx, s.History, toolutil.KindSummary, subject, history.StatusOK, string(opts.Provider))
	return out, nil
}

// summaryOptions layers request fields over the configured defaults.
func (s *Service) summaryOptions(input engine.SummarizeInput) (summary.Options, error) {
	o := s.Config.Defaults
	if input.Provider != "" {
		p, err := summary.ParseProvider(input.Provider)
		if err != nil {
			return o, err
		}
		o.Provider = p
	}
	if input.Format != "" {
		o.Format = summary.Format(strings.ToLower(input.Format))
	}
	if input.Bullet != "" {
		o.Bullet = input.Bullet
	}
	o.IncludeTimestamps = o.IncludeTimestamps || input.IncludeTimestamps
	o.IncludeQuotes = o.IncludeQuotes || input.IncludeQuotes
	if input.MaxTokens > 0 {
		o.MaxTokens = input.MaxTokens
	}
	if input.Temperature != nil {
		o.Temperature = *input.Temperature
	}
	return o, nil
}

// explain prefixes upstream failures with an actionable hint.
func explain(err error) error {
	var ue *summary.UpstreamError
	if errors.As(err, &ue) {
		return fmt.Errorf("%s (%w)", ue.Hint(), err)
	}
	return err
}
