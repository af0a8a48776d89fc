package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SourceBaseURL        string        // video platform origin, overridable for tests
	FetchTimeout         time.Duration // per page / caption request
	LLMTimeout           time.Duration // per summarization request
	AttemptDelay         time.Duration // fixed wait between failed attempts of one strategy family
	MaxPageBytes         int64
	MaxTranscriptChars   int // transcript cap before prompt building (0 = no cap)
	YtdlpPath            string
	YtdlpTimeout         time.Duration // per yt-dlp subtitle listing run
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = page GETs go through HTTPClient
}

// DefaultSourceBaseURL is the origin used when SourceBaseURL is empty.
const DefaultSourceBaseURL = "https://www.youtube.com"

var cfg = Config{
	SourceBaseURL:      DefaultSourceBaseURL,
	FetchTimeout:       15 * time.Second,
	LLMTimeout:         120 * time.Second,
	AttemptDelay:       1500 * time.Millisecond,
	MaxPageBytes:       6 * 1024 * 1024,
	MaxTranscriptChars: 60000,
	YtdlpPath:          "yt-dlp",
	YtdlpTimeout:       60 * time.Second,
	HTTPClient:         &http.Client{Timeout: 20 * time.Second},
}

// Cfg exposes the engine configuration for sub-packages (youtube, summary).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Empty timeouts, paths and clients keep their defaults; a zero AttemptDelay
// or MaxTranscriptChars means none.
func Init(c Config) {
	if c.SourceBaseURL == "" {
		c.SourceBaseURL = cfg.SourceBaseURL
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = cfg.FetchTimeout
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = cfg.LLMTimeout
	}
	if c.AttemptDelay < 0 {
		c.AttemptDelay = 0
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = cfg.MaxPageBytes
	}
	if c.YtdlpPath == "" {
		c.YtdlpPath = cfg.YtdlpPath
	}
	if c.YtdlpTimeout <= 0 {
		c.YtdlpTimeout = cfg.YtdlpTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = cfg.HTTPClient
	}
	cfg = c
	Cfg = &cfg
}
