package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is returned when an upstream answers with a non-200 status.
type StatusError struct {
	Code    int
	URL     string
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.Code, e.URL, e.Snippet)
}

// BrowserHeaders returns a Chrome-like header set with a rotated User-Agent.
func BrowserHeaders() map[string]string {
	h := ChromeHeaders()
	if h == nil {
		h = map[string]string{}
	}
	h["User-Agent"] = RandomUserAgent()
	if _, ok := h["Accept-Language"]; !ok {
		h["Accept-Language"] = "en-US,en;q=0.9"
	}
	return h
}

// Fetch performs an HTTP request through Cfg.HTTPClient with stealth retry.
// The call is bounded by Cfg.FetchTimeout and the body by Cfg.MaxPageBytes.
func Fetch(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	metrics.FetchRequests.Add(1)
	if cfg.BrowserClient != nil && method == http.MethodGet {
		return fetchBrowser(ctx, rawURL, headers)
	}
	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			// the transport negotiates and decodes compression itself
			if strings.EqualFold(k, "Accept-Encoding") {
				continue
			}
			req.Header.Set(k, v)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", UserAgentChrome)
		}
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Add(1)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL, Snippet: string(snippet)}
	}
	return readResponseBody(resp, cfg.MaxPageBytes)
}

// fetchBrowser GETs rawURL through the Chrome-fingerprinted client.
func fetchBrowser(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	data, err := RetryDo(ctx, DefaultRetryConfig, func() ([]byte, error) {
		d, _, status, err := cfg.BrowserClient.Do(http.MethodGet, rawURL, headers, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &StatusError{Code: status, URL: rawURL, Snippet: TruncateRunes(string(d), 256, "")}
		}
		return d, nil
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if int64(len(data)) > cfg.MaxPageBytes {
		data = data[:cfg.MaxPageBytes]
	}
	return data, nil
}

// FetchPage GETs a page and returns its body as a string.
func FetchPage(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	data, err := Fetch(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	if limit > 0 {
		r = io.LimitReader(r, limit)
	}
	return io.ReadAll(r)
}
