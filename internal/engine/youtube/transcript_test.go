package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID VideoID = "dQw4w9WgXcQ"

// fakeFetcher is its own SubtitleSet.
type fakeFetcher struct {
	available bool
	openErr   error
	mu        sync.Mutex
	opens     int
	calls     []TranscriptVariant
	respond   func(n int, v TranscriptVariant) (FetchedTranscript, error)
}

func (f *fakeFetcher) Available() bool { return f.available }

func (f *fakeFetcher) Open(context.Context, VideoID) (SubtitleSet, error) {
	f.mu.Lock()
	f.opens++
	f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f, nil
}

func (f *fakeFetcher) Fetch(_ context.Context, v TranscriptVariant) (FetchedTranscript, error) {
	f.mu.Lock()
	f.calls = append(f.calls, v)
	n := len(f.calls)
	f.mu.Unlock()
	return f.respond(n, v)
}

type stubStrategy struct {
	name  string
	res   TranscriptResult
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, VideoID) (TranscriptResult, error) {
	s.calls++
	return s.res, s.err
}

const srv3Body = `<?xml version="1.0" encoding="utf-8" ?><timedtext format="3"><body>` +
	`<p t="0" d="1000">Hello there general</p><p t="1000" d="1000">Kenobi you are a bold one</p></body></timedtext>`

const classicBody = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="1">Hello &amp;#39;world&amp;#39;</text>` +
	`<text start="1" dur="2">this is the direct page path</text></transcript>`

func watchPage(playerJSON string) string {
	return `<!DOCTYPE html><html><head><title>Some Video - YouTube</title></head><body>` +
		`<script>var ytInitialPlayerResponse = ` + playerJSON + `;</script></body></html>`
}

// fixtureServer serves a watch page, the innertube player endpoint and
// caption tracks. Empty arguments answer 404.
func fixtureServer(t *testing.T, page, player string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if page == "" || r.URL.Query().Get("v") != string(testID) {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if player == "" || r.Method != http.MethodPost ||
			r.Header.Get("X-Youtube-Client-Name") != "3" ||
			!strings.Contains(string(body), `"videoId":"`+string(testID)+`"`) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, player)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("fmt") {
		case "srv3":
			fmt.Fprint(w, srv3Body)
		case "":
			fmt.Fprint(w, classicBody)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const playerWithTracks = `{"playabilityStatus":{"status":"OK"},
"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"/api/timedtext?v=dQw4w9WgXcQ&lang=de&kind=asr","languageCode":"de","kind":"asr"},
{"baseUrl":"/api/timedtext?v=dQw4w9WgXcQ&lang=en&fmt=json3","languageCode":"en"}]}},
"videoDetails":{"title":"Some Video","author":"Some Creator"}}`

const playerWithoutTracks = `{"playabilityStatus":{"status":"OK"},"videoDetails":{"title":"Some Video","author":"Some Creator"}}`

func TestExtract_ThirdPartyThirdVariant(t *testing.T) {
	srv := fixtureServer(t, "", "")
	want := strings.Repeat("abcd", 10)
	f := &fakeFetcher{available: true, respond: func(n int, _ TranscriptVariant) (FetchedTranscript, error) {
		switch n {
		case 1:
			return FetchedTranscript{}, errors.New("no manual english")
		case 2:
			return FetchedTranscript{Text: "too short"}, nil
		default:
			return FetchedTranscript{Text: want, LanguageCode: "en-US", Kind: KindAuto}, nil
		}
	}}

	e := NewExtractor(WithBaseURL(srv.URL), WithTranscriptFetcher(f), WithAttemptDelay(time.Millisecond))
	res := e.Extract(context.Background(), testID)

	assert.Equal(t, want, res.Text)
	assert.Len(t, res.Text, 40)
	assert.True(t, res.IsAutoGenerated)
	assert.Equal(t, "en-US", res.LanguageCode)
	assert.Equal(t, "third_party", res.Strategy)
	assert.Equal(t, thirdPartyVariants[:3], f.calls)
	assert.False(t, IsPlaceholder(res))
}

func TestExtract_AllStrategiesFail(t *testing.T) {
	srv := fixtureServer(t, watchPage(playerWithoutTracks), "")
	f := &fakeFetcher{available: false}

	e := NewExtractor(WithBaseURL(srv.URL), WithTranscriptFetcher(f), WithAttemptDelay(0))
	res := e.Extract(context.Background(), testID)

	assert.True(t, IsPlaceholder(res))
	assert.Contains(t, res.Text, "could not extract")
	assert.Contains(t, res.Text, `"Some Video" by Some Creator`)
	assert.Contains(t, res.Text, string(testID))
	assert.False(t, res.IsAutoGenerated)
	assert.Empty(t, res.LanguageCode)
	assert.Empty(t, f.calls)
}

func TestExtract_InnertubeTrack(t *testing.T) {
	srv := fixtureServer(t, "", playerWithTracks)
	e := NewExtractor(WithBaseURL(srv.URL), WithTranscriptFetcher(&fakeFetcher{}))

	res := e.Extract(context.Background(), testID)
	assert.Equal(t, "innertube", res.Strategy)
	assert.Equal(t, "Hello there general Kenobi you are a bold one", res.Text)
	assert.Equal(t, "en", res.LanguageCode)
	assert.False(t, res.IsAutoGenerated)
}

func TestEmbeddedDataStrategy(t *testing.T) {
	t.Run("player response", func(t *testing.T) {
		srv := fixtureServer(t, watchPage(playerWithTracks), "")
		res, err := (&EmbeddedDataStrategy{BaseURL: srv.URL}).Attempt(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, "Hello there general Kenobi you are a bold one", res.Text)
		assert.Equal(t, "en", res.LanguageCode)
	})

	t.Run("script scan", func(t *testing.T) {
		page := `<html><body><script>window.cfg = {"player":{"captionTracks":[` +
			`{"baseUrl":"/api/timedtext?lang=de","languageCode":"de","kind":"asr"}]}};</script></body></html>`
		srv := fixtureServer(t, page, "")
		res, err := (&EmbeddedDataStrategy{BaseURL: srv.URL}).Attempt(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, "de", res.LanguageCode)
		assert.True(t, res.IsAutoGenerated)
	})

	t.Run("config string blob", func(t *testing.T) {
		inner := `{\"captions\":{\"captionTracks\":[{\"baseUrl\":\"/api/timedtext?lang=en\",\"languageCode\":\"en\"}]}}`
		page := `<html><body><script>ytcfg.set({"PLAYER_VARS":{"embedded_player_response":"` + inner + `"}});</script></body></html>`
		srv := fixtureServer(t, page, "")
		res, err := (&EmbeddedDataStrategy{BaseURL: srv.URL}).Attempt(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, "en", res.LanguageCode)
	})

	t.Run("no captions anywhere", func(t *testing.T) {
		srv := fixtureServer(t, watchPage(playerWithoutTracks), "")
		_, err := (&EmbeddedDataStrategy{BaseURL: srv.URL}).Attempt(context.Background(), testID)
		assert.ErrorIs(t, err, ErrNoCaptions)
	})
}

func TestDirectPageStrategy(t *testing.T) {
	srv := fixtureServer(t, watchPage(playerWithTracks), "")
	res, err := (&DirectPageStrategy{BaseURL: srv.URL}).Attempt(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, "Hello 'world' this is the direct page path", res.Text)
	assert.Equal(t, "en", res.LanguageCode)

	noBlob := fixtureServer(t, "<html><body>plain</body></html>", "")
	_, err = (&DirectPageStrategy{BaseURL: noBlob.URL}).Attempt(context.Background(), testID)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestExtract_StrategyOrder(t *testing.T) {
	failing := &stubStrategy{name: "first", err: errors.New("boom")}
	short := &stubStrategy{name: "second", res: TranscriptResult{Text: "tiny"}}
	good := &stubStrategy{name: "third", res: TranscriptResult{Text: "  a perfectly usable transcript  ", LanguageCode: "en"}}
	never := &stubStrategy{name: "fourth", res: TranscriptResult{Text: "should not be reached at all"}}

	e := NewExtractor(WithStrategies(failing, short, good, never))
	res := e.Extract(context.Background(), testID)

	assert.Equal(t, "a perfectly usable transcript", res.Text)
	assert.Equal(t, "third", res.Strategy)
	assert.Equal(t, []int{1, 1, 1, 0}, []int{failing.calls, short.calls, good.calls, never.calls})
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &stubStrategy{name: "unused", res: TranscriptResult{Text: "would have worked fine"}}
	res := NewExtractor(WithStrategies(s)).Extract(ctx, testID)

	assert.Zero(t, s.calls)
	assert.True(t, IsPlaceholder(res))
	assert.Contains(t, res.Text, `"Unknown" by Unknown`)
}

func TestThirdPartyStrategy(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		_, err := (&ThirdPartyStrategy{Fetcher: &fakeFetcher{}}).Attempt(context.Background(), testID)
		assert.ErrorIs(t, err, errFetcherUnavailable)
	})

	t.Run("exhausts variants with delay", func(t *testing.T) {
		boom := errors.New("rate limited")
		f := &fakeFetcher{available: true, respond: func(int, TranscriptVariant) (FetchedTranscript, error) {
			return FetchedTranscript{}, boom
		}}
		delay := 5 * time.Millisecond
		start := time.Now()
		_, err := (&ThirdPartyStrategy{Fetcher: f, Delay: delay}).Attempt(context.Background(), testID)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, thirdPartyVariants, f.calls)
		assert.Equal(t, 1, f.opens)
		assert.GreaterOrEqual(t, time.Since(start), time.Duration(len(thirdPartyVariants)-1)*delay)
	})

	t.Run("unmatched variants are not delayed", func(t *testing.T) {
		f := &fakeFetcher{available: true, respond: func(int, TranscriptVariant) (FetchedTranscript, error) {
			return FetchedTranscript{}, ErrNoMatchingSubs
		}}
		start := time.Now()
		_, err := (&ThirdPartyStrategy{Fetcher: f, Delay: time.Hour}).Attempt(context.Background(), testID)

		assert.ErrorIs(t, err, ErrNoMatchingSubs)
		assert.Equal(t, thirdPartyVariants, f.calls)
		assert.Less(t, time.Since(start), time.Minute)
	})

	t.Run("listing fails", func(t *testing.T) {
		boom := errors.New("yt-dlp: exit status 1")
		f := &fakeFetcher{available: true, openErr: boom}
		_, err := (&ThirdPartyStrategy{Fetcher: f, Delay: time.Hour}).Attempt(context.Background(), testID)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, f.opens)
		assert.Empty(t, f.calls)
	})

	t.Run("cancelled during delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		f := &fakeFetcher{available: true, respond: func(int, TranscriptVariant) (FetchedTranscript, error) {
			cancel()
			return FetchedTranscript{}, errors.New("nope")
		}}
		_, err := (&ThirdPartyStrategy{Fetcher: f, Delay: time.Hour}).Attempt(ctx, testID)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, f.calls, 1)
	})
}

func TestPlaceholderText(t *testing.T) {
	text := PlaceholderText(testID, VideoMetadata{Title: "A Talk", Author: "Speaker"})
	assert.True(t, strings.HasPrefix(text, `We could not extract a transcript for "A Talk" by Speaker (video dQw4w9WgXcQ).`))
	assert.Contains(t, text, "Suggestions:")
}
