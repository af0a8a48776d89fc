package summary

import (
	"fmt"
	"maps"
	"strings"
)

// Provider selects a summarization backend.
type Provider string

const (
	ProviderLocal     Provider = "local"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCustom    Provider = "custom"
)

// Providers lists every supported backend in dispatch order.
var Providers = []Provider{ProviderLocal, ProviderOpenAI, ProviderAnthropic, ProviderCustom}

// ParseProvider accepts a provider name case-insensitively; "" means local.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProviderLocal, nil
	}
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidOptions, s)
}

// Hosted reports whether p needs credentials.
func (p Provider) Hosted() bool { return p != ProviderLocal }

// Format selects the prompt template variant.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPlain    Format = "plain"
)

// DefaultBullet is the list glyph used when Options.Bullet is empty.
const DefaultBullet = "•"

// Options control prompt construction and sampling.
type Options struct {
	Format            Format
	Bullet            string
	IncludeTimestamps bool
	IncludeQuotes     bool
	MaxTokens         int
	Temperature       float64
	Provider          Provider
}

// DefaultOptions returns markdown output from the local provider.
func DefaultOptions() Options {
	return Options{
		Format:      FormatMarkdown,
		Bullet:      DefaultBullet,
		MaxTokens:   1024,
		Temperature: 0.3,
		Provider:    ProviderLocal,
	}
}

// Validate checks ranges and enum values.
func (o Options) Validate() error {
	switch o.Format {
	case FormatMarkdown, FormatPlain:
	default:
		return fmt.Errorf("%w: format %q (want markdown or plain)", ErrInvalidOptions, o.Format)
	}
	if o.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidOptions, o.MaxTokens)
	}
	if o.Temperature < 0 || o.Temperature > 1 {
		return fmt.Errorf("%w: temperature must be within [0,1], got %g", ErrInvalidOptions, o.Temperature)
	}
	if _, err := ParseProvider(string(o.Provider)); err != nil {
		return err
	}
	return nil
}

func (o Options) bullet() string {
	if b := strings.TrimSpace(o.Bullet); b != "" {
		return b
	}
	return DefaultBullet
}

// ProviderConfig holds credentials and endpoint of one backend.
type ProviderConfig struct {
	APIKey       string            `yaml:"api_key" json:"api_key,omitempty"`
	BaseURL      string            `yaml:"base_url" json:"base_url,omitempty"`
	Model        string            `yaml:"model" json:"model,omitempty"`
	ExtraHeaders map[string]string `yaml:"extra_headers" json:"extra_headers,omitempty"`
}

var defaultBaseURLs = map[Provider]string{
	ProviderLocal:     "http://localhost:11434",
	ProviderOpenAI:    "https://api.openai.com/v1",
	ProviderAnthropic: "https://api.anthropic.com",
}

var defaultModels = map[Provider]string{
	ProviderLocal:     "llama3.2",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// Merge returns c with every non-empty field of over applied on top.
// Extra headers are merged key by key.
func (c ProviderConfig) Merge(over ProviderConfig) ProviderConfig {
	out := c
	if over.APIKey != "" {
		out.APIKey = over.APIKey
	}
	if over.BaseURL != "" {
		out.BaseURL = over.BaseURL
	}
	if over.Model != "" {
		out.Model = over.Model
	}
	if len(c.ExtraHeaders)+len(over.ExtraHeaders) > 0 {
		out.ExtraHeaders = make(map[string]string, len(c.ExtraHeaders)+len(over.ExtraHeaders))
		maps.Copy(out.ExtraHeaders, c.ExtraHeaders)
		maps.Copy(out.ExtraHeaders, over.ExtraHeaders)
	}
	return out
}

// withDefaults fills base URL and model for providers that have them.
func (c ProviderConfig) withDefaults(p Provider) ProviderConfig {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Model = strings.TrimSpace(c.Model)
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURLs[p]
	}
	if c.Model == "" {
		c.Model = defaultModels[p]
	}
	return c
}

// validate reports the first missing required field for p.
func (c ProviderConfig) validate(p Provider) error {
	if p.Hosted() && c.APIKey == "" {
		return &ConfigurationError{Provider: p, Field: "api_key"}
	}
	if c.BaseURL == "" {
		return &ConfigurationError{Provider: p, Field: "base_url"}
	}
	if c.Model == "" {
		return &ConfigurationError{Provider: p, Field: "model"}
	}
	return nil
}
