package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
)

const (
	anthropicVersion = "2023-06-01"
	maxProviderBody  = 2 << 20

	localContextWindow = 8192
	localTopP          = 0.9
	localRepeatPenalty = 1.1
)

// generationFailed prefixes the user-visible text returned when the local
// model answers without a response field.
const generationFailed = "Summary generation failed: "

// --- local (Ollama /api/generate) ---

type localRequest struct {
	Model   string       `json:"model"`
	Prompt  string       `json:"prompt"`
	System  string       `json:"system,omitempty"`
	Stream  bool         `json:"stream"`
	Options localOptions `json:"options"`
}

type localOptions struct {
	NumCtx        int     `json:"num_ctx"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	NumPredict    int     `json:"num_predict"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type localResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

func (g *Gateway) callLocal(ctx context.Context, prompt string, o Options, c ProviderConfig) (string, error) {
	req := localRequest{
		Model:  c.Model,
		Prompt: prompt,
		System: systemPrompt,
		Options: localOptions{
			NumCtx:        localContextWindow,
			Temperature:   o.Temperature,
			TopP:          localTopP,
			NumPredict:    o.MaxTokens,
			RepeatPenalty: localRepeatPenalty,
		},
	}
	var resp localResponse
	if err := g.postJSON(ctx, ProviderLocal, c, c.BaseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil || strings.TrimSpace(*resp.Response) == "" {
		reason := resp.Error
		if reason == "" {
			reason = "the model returned no response"
		}
		return generationFailed + reason, nil
	}
	return *resp.Response, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- anthropic (/v1/messages) ---

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (g *Gateway) callAnthropic(ctx context.Context, prompt string, o Options, c ProviderConfig) (string, error) {
	req := anthropicRequest{
		Model:       c.Model,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
	}
	var resp anthropicResponse
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": anthropicVersion,
	}
	if err := g.postJSON(ctx, ProviderAnthropic, c, c.BaseURL+"/v1/messages", headers, req, &resp); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", missingText(ProviderAnthropic, c, "content[type=text].text")
	}
	return sb.String(), nil
}

// --- openai and custom (OpenAI-compatible /chat/completions, via go-kit llm) ---

// completionResponse is only decoded to explain a failed completion.
type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// recordingTransport injects fixed headers into every request and keeps
// the status and body of the last response, so failures reported by the
// llm client can be classified.
type recordingTransport struct {
	base    http.RoundTripper
	headers map[string]string

	mu     sync.Mutex
	status int
	body   []byte
}

func (t *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	t.mu.Lock()
	t.status, t.body = resp.StatusCode, data
	t.mu.Unlock()
	return resp, nil
}

func (t *recordingTransport) last() (int, []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.body
}

func (g *Gateway) callCompatible(ctx context.Context, p Provider, prompt string, o Options, c ProviderConfig) (string, error) {
	rt := &recordingTransport{base: g.client.Transport, headers: c.ExtraHeaders}
	hc := &http.Client{Timeout: g.client.Timeout, Transport: rt}
	client := llm.NewClient(c.BaseURL, c.APIKey, c.Model,
		llm.WithHTTPClient(hc),
		llm.WithMaxTokens(o.MaxTokens),
		llm.WithTemperature(o.Temperature),
	)
	out, err := client.Complete(ctx, systemPrompt, prompt,
		llm.WithChatTemperature(o.Temperature),
		llm.WithChatMaxTokens(o.MaxTokens),
	)
	if err != nil {
		status, body := rt.last()
		return "", completionError(p, c, status, body, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", missingText(p, c, "choices[0].message.content")
	}
	return out, nil
}

// completionError classifies a failed completion by the last HTTP response
// seen. Status stays 0 only when no response arrived at all.
func completionError(p Provider, c ProviderConfig, status int, body []byte, err error) error {
	switch {
	case status == 0:
		return &UpstreamError{Provider: p, Model: c.Model, Message: err.Error(), Err: err}
	case status < 200 || status > 299:
		return &UpstreamError{Provider: p, Model: c.Model, Status: status,
			Message: upstreamMessage(body, http.StatusText(status)), Err: err}
	}
	var resp completionResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		return &UpstreamError{Provider: p, Model: c.Model, Status: status,
			Message: "unparseable response: " + engine.TruncateRunes(string(body), 200, "..."), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return missingText(p, c, "choices[0].message.content")
	}
	return &UpstreamError{Provider: p, Model: c.Model, Status: status, Message: err.Error(), Err: err}
}

// --- shared transport ---

// postJSON sends payload to url with the provider's auth headers plus the
// configured extra headers, and decodes a 2xx body into out.
func (g *Gateway) postJSON(ctx context.Context, p Provider, c ProviderConfig, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("summary: encode %s request: %w", p, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ConfigurationError{Provider: p, Field: "base_url"}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.ExtraHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &UpstreamError{Provider: p, Model: c.Model, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return &UpstreamError{Provider: p, Model: c.Model, Status: resp.StatusCode, Message: "reading response: " + err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Provider: p, Model: c.Model, Status: resp.StatusCode, Message: upstreamMessage(data, resp.Status)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Provider: p, Model: c.Model, Status: resp.StatusCode,
			Message: "unparseable response: " + engine.TruncateRunes(string(data), 200, "..."), Err: err}
	}
	return nil
}

// upstreamMessage extracts the provider's own error text from a body shaped
// like {"error":"..."} or {"error":{"message":"..."}}.
func upstreamMessage(body []byte, status string) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return engine.TruncateRunes(text, 200, "...")
	}
	return status
}

func missingText(p Provider, c ProviderConfig, field string) error {
	return &UpstreamError{Provider: p, Model: c.Model, Status: http.StatusOK,
		Message: "response has no " + field, Err: errors.New("empty completion")}
}
