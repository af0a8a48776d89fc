package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transcript = "Today we talk about building reliable scrapers. First, expect every format to change. Second, always keep a fallback."

func newGateway() *Gateway { return NewGateway(WithTimeout(5 * time.Second)) }

func optionsFor(p Provider) Options {
	o := DefaultOptions()
	o.Provider = p
	return o
}

func TestBuildPrompt_MarkdownSectionsAndBullet(t *testing.T) {
	o := DefaultOptions()
	o.Bullet = "▸"
	p := BuildPrompt(transcript, o)

	last := -1
	for _, h := range MarkdownHeaders() {
		i := strings.Index(p, h)
		require.GreaterOrEqual(t, i, 0, "missing header %q", h)
		assert.Greater(t, i, last, "header %q out of order", h)
		last = i
	}
	assert.Contains(t, p, `"▸ "`)
	assert.NotContains(t, p, DefaultBullet)
	assert.True(t, strings.HasSuffix(p, transcript))
	assert.Contains(t, p, timestampsOff)
	assert.Contains(t, p, quotesOff)
}

func TestBuildPrompt_PlainAndToggles(t *testing.T) {
	o := Options{Format: FormatPlain, IncludeTimestamps: true, IncludeQuotes: true, MaxTokens: 100}
	p := BuildPrompt(transcript, o)

	for _, h := range PlainHeaders() {
		assert.Contains(t, p, h)
	}
	assert.NotContains(t, p, "## ")
	assert.Contains(t, p, `"`+DefaultBullet+` "`)
	assert.Contains(t, p, timestampsOn)
	assert.Contains(t, p, quotesOn)
	assert.NotContains(t, p, timestampsOff)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero temperature", func(o *Options) { o.Temperature = 0 }, false},
		{"max temperature", func(o *Options) { o.Temperature = 1 }, false},
		{"temperature above one", func(o *Options) { o.Temperature = 1.2 }, true},
		{"negative temperature", func(o *Options) { o.Temperature = -0.1 }, true},
		{"zero tokens", func(o *Options) { o.MaxTokens = 0 }, true},
		{"unknown format", func(o *Options) { o.Format = "html" }, true},
		{"unknown provider", func(o *Options) { o.Provider = "gemini" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	p, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, p)

	_, err = ParseProvider("bard")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestProviderConfigMerge(t *testing.T) {
	base := ProviderConfig{APIKey: "file-key", Model: "file-model", ExtraHeaders: map[string]string{"A": "1", "B": "2"}}
	got := base.Merge(ProviderConfig{Model: "req-model", ExtraHeaders: map[string]string{"B": "3"}})

	assert.Equal(t, "file-key", got.APIKey)
	assert.Equal(t, "req-model", got.Model)
	assert.Equal(t, map[string]string{"A": "1", "B": "3"}, got.ExtraHeaders)
	assert.Equal(t, "2", base.ExtraHeaders["B"], "receiver must not be mutated")
}

func TestSummarize_MissingCredentialsMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		provider Provider
		cfg      ProviderConfig
		field    string
	}{
		{ProviderOpenAI, ProviderConfig{BaseURL: srv.URL}, "api_key"},
		{ProviderAnthropic, ProviderConfig{BaseURL: srv.URL, APIKey: "   "}, "api_key"},
		{ProviderCustom, ProviderConfig{BaseURL: srv.URL, Model: "m"}, "api_key"},
		{ProviderCustom, ProviderConfig{APIKey: "k", Model: "m"}, "base_url"},
		{ProviderCustom, ProviderConfig{APIKey: "k", BaseURL: srv.URL}, "model"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.provider, tt.field), func(t *testing.T) {
			_, err := newGateway().Summarize(context.Background(), transcript, optionsFor(tt.provider), tt.cfg)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.provider, cfgErr.Provider)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	_, err := newGateway().Summarize(context.Background(), " \n ", DefaultOptions(), ProviderConfig{})
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestSummarize_Local(t *testing.T) {
	var got localRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"model":"llama3.2","response":"  local summary  ","done":true}`)
	}))
	defer srv.Close()

	o := DefaultOptions()
	o.MaxTokens = 321
	o.Temperature = 0.5
	out, err := newGateway().Summarize(context.Background(), transcript, o, ProviderConfig{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, "local summary", out)

	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 321, got.Options.NumPredict)
	assert.Equal(t, 0.5, got.Options.Temperature)
	assert.Equal(t, localContextWindow, got.Options.NumCtx)
	assert.Equal(t, localTopP, got.Options.TopP)
	assert.Equal(t, localRepeatPenalty, got.Options.RepeatPenalty)
	assert.True(t, strings.HasSuffix(got.Prompt, transcript))
}

func TestSummarize_LocalWithoutResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true}`)
	}))
	defer srv.Close()

	out, err := newGateway().Summarize(context.Background(), transcript, DefaultOptions(), ProviderConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Summary generation failed:"))
}

func TestSummarize_LocalModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model \"tiny\" not found, try pulling it first"}`)
	}))
	defer srv.Close()

	_, err := newGateway().Summarize(context.Background(), transcript, DefaultOptions(), ProviderConfig{BaseURL: srv.URL, Model: "tiny"})
	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusNotFound, up.Status)
	assert.Contains(t, up.Message, "not found")
	assert.Contains(t, up.Hint(), "ollama pull tiny")
}

func TestSummarize_LocalUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newGateway().Summarize(context.Background(), transcript, DefaultOptions(), ProviderConfig{BaseURL: url})
	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Zero(t, up.Status)
	assert.Contains(t, up.Hint(), "Ollama is running")
}

func TestSummarize_OpenAI(t *testing.T) {
	var got struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" ||
			r.Header.Get("Authorization") != "Bearer sk-test" ||
			r.Header.Get("X-Org") != "acme" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"bad auth"}}`)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"openai summary"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	cfg := ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", ExtraHeaders: map[string]string{"X-Org": "acme"}}
	out, err := newGateway().Summarize(context.Background(), transcript, optionsFor(ProviderOpenAI), cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai summary", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.NotEmpty(t, got.Messages)
	last := got.Messages[len(got.Messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, transcript)
}

// compatibleFailures are answers an OpenAI-compatible endpoint may give.
var compatibleFailures = []struct {
	name       string
	status     int
	body       string
	wantStatus int
	wantMsg    string
	wantHint   string
}{
	{"server error", 500, `{"error":{"message":"overloaded"}}`, 500, "overloaded", "failed while generating"},
	{"rate limited", 429, `{"error":{"message":"slow down"}}`, 429, "slow down", "rate limiting"},
	{"bad key", 401, `{"error":{"message":"invalid key"}}`, 401, "invalid key", "API key"},
	{"unknown model", 404, `{"error":{"message":"The model gpt-x does not exist"}}`, 404, "does not exist", "not available"},
	{"no choices", 200, `{"choices":[]}`, 200, "choices[0].message.content", "rejected the request"},
	{"not json", 200, `<html>oops</html>`, 200, "unparseable response", "rejected the request"},
}

func TestSummarize_CompatibleFailures(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderCustom} {
		for _, tt := range compatibleFailures {
			t.Run(string(p)+"/"+tt.name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					fmt.Fprint(w, tt.body)
				}))
				defer srv.Close()

				_, err := newGateway().Summarize(context.Background(), transcript, optionsFor(p),
					ProviderConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-x"})
				var up *UpstreamError
				require.ErrorAs(t, err, &up)
				assert.Equal(t, p, up.Provider)
				assert.Equal(t, tt.wantStatus, up.Status)
				assert.Contains(t, up.Message, tt.wantMsg)
				assert.Contains(t, up.Hint(), tt.wantHint)
				assert.NotContains(t, up.Error(), "unreachable")
			})
		}
	}
}

func TestSummarize_CustomUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newGateway().Summarize(context.Background(), transcript, optionsFor(ProviderCustom),
		ProviderConfig{APIKey: "k", BaseURL: url, Model: "m"})
	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Zero(t, up.Status)
	assert.Contains(t, up.Hint(), "Cannot reach the custom API")
}

func TestCompletionError(t *testing.T) {
	cause := errors.New("llm: request failed")
	c := ProviderConfig{Model: "m"}

	err := completionError(ProviderCustom, c, http.StatusBadGateway, []byte(`{"error":"upstream down"}`), cause)
	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusBadGateway, up.Status)
	assert.Equal(t, "upstream down", up.Message)
	assert.ErrorIs(t, err, cause)

	err = completionError(ProviderCustom, c, http.StatusOK,
		[]byte(`{"choices":[{"message":{"role":"assistant","content":"fine"}}]}`), cause)
	require.ErrorAs(t, err, &up)
	assert.Equal(t, cause.Error(), up.Message)
}

func TestSummarize_Anthropic(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" || r.Header.Get("x-api-key") != "ak" || r.Header.Get("anthropic-version") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"nope"}}`)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"part one, "},{"type":"tool_use","id":"x"},{"type":"text","text":"part two"}]}`)
	}))
	defer srv.Close()

	out, err := newGateway().Summarize(context.Background(), transcript, optionsFor(ProviderAnthropic),
		ProviderConfig{APIKey: "ak", BaseURL: srv.URL, Model: "claude-test"})
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", out)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, systemPrompt, got.System)

	_, err = newGateway().Summarize(context.Background(), transcript, optionsFor(ProviderAnthropic),
		ProviderConfig{APIKey: "wrong", BaseURL: srv.URL})
	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, "nope", up.Message)
}

func TestSummarize_CustomInjectsHeaders(t *testing.T) {
	var sawHeader atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Tenant") == "blue" {
			sawHeader.Store(true)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"custom summary"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	cfg := ProviderConfig{APIKey: "ck", BaseURL: srv.URL, Model: "local-model", ExtraHeaders: map[string]string{"X-Tenant": "blue"}}
	out, err := newGateway().Summarize(context.Background(), transcript, optionsFor(ProviderCustom), cfg)
	require.NoError(t, err)
	assert.Equal(t, "custom summary", out)
	assert.True(t, sawHeader.Load())
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("wrapped: %w", &UpstreamError{Provider: ProviderOpenAI, Message: cause.Error(), Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "openai unreachable")
}
