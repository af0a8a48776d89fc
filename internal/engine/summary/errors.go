package summary

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyTranscript = errors.New("summary: transcript is empty")
	ErrInvalidOptions  = errors.New("summary: invalid options")
)

// ConfigurationError means a selected provider lacks a required setting.
// It is raised before any network call and is never retried.
type ConfigurationError struct {
	Provider Provider
	Field    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("summary: provider %s is missing %s; set it in the request or in the config file", e.Provider, e.Field)
}

// UpstreamError is a failure reported by (or while reaching) a backend.
// Status is 0 when no HTTP response was received.
type UpstreamError struct {
	Provider Provider
	Model    string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("summary: %s unreachable: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("summary: %s returned HTTP %d: %s", e.Provider, e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Hint returns an actionable explanation of the failure.
func (e *UpstreamError) Hint() string {
	msg := strings.ToLower(e.Message)
	switch {
	case e.Status == 0:
		if e.Provider == ProviderLocal {
			return "Cannot reach the local model server. Make sure Ollama is running and the base URL is correct."
		}
		return fmt.Sprintf("Cannot reach the %s API. Check the base URL and your network connection.", e.Provider)
	case e.Status == http.StatusNotFound && strings.Contains(msg, "model"),
		strings.Contains(msg, "model") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		if e.Provider == ProviderLocal {
			return fmt.Sprintf("Model %q is not installed. Run `ollama pull %s` or choose another model.", e.Model, e.Model)
		}
		return fmt.Sprintf("Model %q is not available for %s. Choose another model.", e.Model, e.Provider)
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return fmt.Sprintf("The %s API rejected the key. Check the API key.", e.Provider)
	case e.Status == http.StatusTooManyRequests:
		return fmt.Sprintf("The %s API is rate limiting requests. Wait and try again.", e.Provider)
	case e.Status >= 500:
		return fmt.Sprintf("The %s server failed while generating the summary. Try again or use a smaller model.", e.Provider)
	}
	return fmt.Sprintf("%s rejected the request: %s", e.Provider, e.Message)
}
