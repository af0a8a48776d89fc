package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"slices"
	"time"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/captions"
)

// TranscriptVariant is one locale/kind combination asked of a TranscriptFetcher.
// Languages holds anchored patterns such as "en" or "en.*"; empty means any.
// An empty Kind accepts both manual and auto-generated tracks.
type TranscriptVariant struct {
	Languages []string
	Kind      Kind
}

func (v TranscriptVariant) String() string {
	kind := string(v.Kind)
	if kind == "" {
		kind = "any"
	}
	if len(v.Languages) == 0 {
		return "any/" + kind
	}
	return fmt.Sprintf("%v/%s", v.Languages, kind)
}

// FetchedTranscript is what an external transcript integration returns.
type FetchedTranscript struct {
	Text         string
	LanguageCode string
	Kind         Kind
}

// TranscriptFetcher is an external transcript integration. Open looks the
// video up once; the returned SubtitleSet answers every variant from that
// lookup.
type TranscriptFetcher interface {
	Available() bool
	Open(ctx context.Context, id VideoID) (SubtitleSet, error)
}

// SubtitleSet is the subtitle listing of one video.
type SubtitleSet interface {
	Fetch(ctx context.Context, v TranscriptVariant) (FetchedTranscript, error)
}

// CmdRunner executes external commands.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

// NewCmdRunner returns a CmdRunner backed by os/exec.
func NewCmdRunner() CmdRunner { return execRunner{} }

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// children holding stdout open must not outlive the kill
	cmd.WaitDelay = 5 * time.Second
	return cmd.Output()
}

// ErrNoMatchingSubs means the listing has no track for a variant. No request
// was made to find that out.
var ErrNoMatchingSubs = errors.New("yt-dlp: no subtitles match variant")

// defaultYtdlpTimeout bounds one yt-dlp run when neither the fetcher nor
// engine.Cfg sets a limit.
const defaultYtdlpTimeout = 60 * time.Second

// subtitleFormats in preference order; json3 is not a caption dialect the
// normalizer understands.
var subtitleFormats = []string{"vtt", "srv3", "srv1", "ttml", "srt"}

// YtdlpFetcher asks yt-dlp for a video's subtitle listing and downloads the
// matching track.
type YtdlpFetcher struct {
	Path     string
	BaseURL  string
	Timeout  time.Duration // per yt-dlp run; <= 0 uses defaultYtdlpTimeout
	Runner   CmdRunner
	LookPath func(string) (string, error)
}

// NewYtdlpFetcher creates a fetcher using the binary at path, bounded by
// engine.Cfg.YtdlpTimeout.
func NewYtdlpFetcher(path, baseURL string) *YtdlpFetcher {
	return &YtdlpFetcher{
		Path:     path,
		BaseURL:  baseURL,
		Timeout:  engine.Cfg.YtdlpTimeout,
		Runner:   NewCmdRunner(),
		LookPath: exec.LookPath,
	}
}

// Available reports whether the yt-dlp binary can be found.
func (f *YtdlpFetcher) Available() bool {
	if f == nil || f.Runner == nil || f.LookPath == nil {
		return false
	}
	_, err := f.LookPath(f.Path)
	return err == nil
}

type ytdlpSub struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

type ytdlpInfo struct {
	Subtitles         map[string][]ytdlpSub `json:"subtitles"`
	AutomaticCaptions map[string][]ytdlpSub `json:"automatic_captions"`
}

// Open runs yt-dlp once in metadata mode and decodes the subtitle listing.
// The run is killed after Timeout even when ctx has no deadline.
func (f *YtdlpFetcher) Open(ctx context.Context, id VideoID) (SubtitleSet, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultYtdlpTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := f.Runner.Run(runCtx, f.Path,
		"--dump-single-json", "--skip-download", "--no-warnings", "--no-playlist",
		WatchURL(f.BaseURL, id))
	if err != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("yt-dlp: no answer within %s: %w", timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("yt-dlp output: %w", err)
	}
	return &info, nil
}

// Fetch downloads the first subtitle track matching v.
func (info *ytdlpInfo) Fetch(ctx context.Context, v TranscriptVariant) (FetchedTranscript, error) {
	type source struct {
		subs map[string][]ytdlpSub
		kind Kind
	}
	var sources []source
	if v.Kind != KindAuto {
		sources = append(sources, source{info.Subtitles, KindManual})
	}
	if v.Kind != KindManual {
		sources = append(sources, source{info.AutomaticCaptions, KindAuto})
	}

	for _, src := range sources {
		for _, lang := range sortedLangs(src.subs) {
			if !matchLanguage(v.Languages, lang) {
				continue
			}
			sub, ok := pickSubtitle(src.subs[lang])
			if !ok {
				continue
			}
			raw, err := engine.FetchPage(ctx, sub.URL, nil)
			if err != nil {
				return FetchedTranscript{}, fmt.Errorf("yt-dlp subtitle %s: %w", lang, err)
			}
			return FetchedTranscript{
				Text:         captions.Normalize(raw, sub.Ext),
				LanguageCode: lang,
				Kind:         src.kind,
			}, nil
		}
	}
	return FetchedTranscript{}, ErrNoMatchingSubs
}

func pickSubtitle(subs []ytdlpSub) (ytdlpSub, bool) {
	for _, ext := range subtitleFormats {
		for _, s := range subs {
			if s.Ext == ext && s.URL != "" {
				return s, true
			}
		}
	}
	return ytdlpSub{}, false
}

func matchLanguage(patterns []string, lang string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := regexp.MatchString("^(?:"+p+")$", lang); err == nil && ok {
			return true
		}
	}
	return false
}

func sortedLangs(m map[string][]ytdlpSub) []string {
	langs := make([]string, 0, len(m))
	for k := range m {
		langs = append(langs, k)
	}
	slices.Sort(langs)
	return langs
}
