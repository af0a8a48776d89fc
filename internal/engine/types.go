package engine

// --- Tool input types ---

type TranscriptInput struct {
	Video string `json:"video" jsonschema:"Video URL (watch, youtu.be, shorts, embed, live) or bare 11-character video ID"`
	Fresh bool   `json:"fresh,omitempty" jsonschema:"Bypass the result cache"`
}

type MetadataInput struct {
	Video string `json:"video" jsonschema:"Video URL or bare 11-character video ID"`
}

type ChannelInput struct {
	URL   string `json:"url" jsonschema:"Channel URL: /@handle, /c/name, /channel/UC..., or /user/name"`
	Fresh bool   `json:"fresh,omitempty" jsonschema:"Bypass the result cache"`
}

type SummarizeInput struct {
	Text              string            `json:"text,omitempty" jsonschema:"Transcript text to summarize. Either text or video is required"`
	Video             string            `json:"video,omitempty" jsonschema:"Video URL or ID; its transcript is extracted first when text is empty"`
	Provider          string            `json:"provider,omitempty" jsonschema:"local, openai, anthropic or custom (default from config)"`
	Format            string            `json:"format,omitempty" jsonschema:"markdown (default) or plain"`
	Bullet            string            `json:"bullet,omitempty" jsonschema:"Bullet glyph for list items (default: •)"`
	IncludeTimestamps bool              `json:"include_timestamps,omitempty" jsonschema:"Ask the model to reference timestamps"`
	IncludeQuotes     bool              `json:"include_quotes,omitempty" jsonschema:"Ask the model to include notable quotes"`
	MaxTokens         int               `json:"max_tokens,omitempty" jsonschema:"Generation length limit (default from config)"`
	Temperature       *float64          `json:"temperature,omitempty" jsonschema:"Sampling temperature between 0 and 1"`
	APIKey            string            `json:"api_key,omitempty" jsonschema:"Overrides the configured API key for this call"`
	BaseURL           string            `json:"base_url,omitempty" jsonschema:"Overrides the configured provider endpoint"`
	Model             string            `json:"model,omitempty" jsonschema:"Overrides the configured model"`
	ExtraHeaders      map[string]string `json:"extra_headers,omitempty" jsonschema:"Additional HTTP headers (custom provider only)"`
}

type HistoryInput struct {
	Limit int    `json:"limit,omitempty" jsonschema:"Max entries to return (default: 20)"`
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by kind: transcript, metadata, channel, summary (or the full tool name)"`
}
