package tubeserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"

	"github.com/anatolykoptev/go_tubesum/internal/config"
	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

// Setup loads configuration, initializes the engine and cache, opens the
// history store and returns a ready Service. The returned func releases
// the store.
func Setup(ctx context.Context) (*Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path != "" {
		slog.Debug("config loaded", slog.String("path", cfg.Path))
	}

	c := engine.Config{
		SourceBaseURL:        env.Str("SOURCE_BASE_URL", engine.DefaultSourceBaseURL),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		LLMTimeout:           env.Duration("LLM_TIMEOUT", 120*time.Second),
		AttemptDelay:         env.Duration("ATTEMPT_DELAY", 1500*time.Millisecond),
		MaxPageBytes:         int64(env.Int("MAX_PAGE_BYTES", 6*1024*1024)),
		MaxTranscriptChars:   env.Int("MAX_TRANSCRIPT_CHARS", 60000),
		YtdlpPath:            env.Str("YTDLP_PATH", "yt-dlp"),
		YtdlpTimeout:         env.Duration("YTDLP_TIMEOUT", 60*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	if env.Str("STEALTH_CLIENT", "true") == "true" {
		c.BrowserClient = newBrowserClient()
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(cfg.RedisURL, cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	var store history.Store
	if env.Str("HISTORY", "on") != "off" {
		store, err = history.Open(ctx, cfg.DatabaseURL, cfg.HistoryDB)
		if err != nil {
			slog.Warn("history store init failed, running without history", slog.Any("error", err))
			store = nil
		}
	}

	svc := NewService(Service{
		Config:  cfg,
		History: store,
		Pacer:   toolutil.NewPacer(env.Float("SOURCE_RPS", 2), env.Int("SOURCE_BURST", 4)),
	})
	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Warn("history close failed", slog.Any("error", err))
			}
		}
	}
	return svc, cleanup, nil
}

// newBrowserClient returns a Chrome-fingerprinted client, routed through a
// Webshare proxy pool when WEBSHARE_API_KEY is set. Nil on failure.
func newBrowserClient() *engine.BrowserClient {
	opts := []stealth.ClientOption{stealth.WithTimeout(15)}

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}

// Describe is a one-line summary of the running configuration for logs.
func (s *Service) Describe() string {
	return fmt.Sprintf("provider=%s format=%s history=%t",
		s.Config.Defaults.Provider, s.Config.Defaults.Format, s.History != nil)
}
