package tubeserver

import (
	"errors"

	"github.com/anatolykoptev/go_tubesum/internal/config"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/summary"
	"github.com/anatolykoptev/go_tubesum/internal/engine/youtube"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

// ErrNoTranscript is returned by Summarize when a video has no extractable
// transcript; the placeholder text is never sent to a model.
var ErrNoTranscript = errors.New("no transcript available")

var errHistoryDisabled = errors.New("task history is disabled")

// Service implements every tool. The MCP handlers and the CLI both call it.
type Service struct {
	Extractor *youtube.Extractor
	Channels  *youtube.ChannelExtractor
	Gateway   *summary.Gateway
	Config    *config.Config
	History   history.Store   // nil disables recording
	Pacer     *toolutil.Pacer // nil never waits
}

// NewService fills unset collaborators with engine-configured defaults.
func NewService(s Service) *Service {
	if s.Extractor == nil {
		s.Extractor = youtube.NewExtractor()
	}
	if s.Channels == nil {
		s.Channels = youtube.NewChannelExtractor(s.Extractor.BaseURL())
	}
	if s.Gateway == nil {
		s.Gateway = summary.NewGateway()
	}
	if s.Config == nil {
		s.Config = &config.Config{Defaults: summary.DefaultOptions()}
	}
	return &s
}
