package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	PlaceholderResults atomic.Int64
	MetadataRequests   atomic.Int64
	ChannelRequests    atomic.Int64
	SummaryCalls       atomic.Int64
	SummaryErrors      atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	HistoryWrites      atomic.Int64
	HistoryWriteErrors atomic.Int64
}

// Per-strategy outcome counters, keyed by strategy name.
var strategyStats sync.Map // name → *strategyCounter

type strategyCounter struct {
	ok   atomic.Int64
	fail atomic.Int64
}

func strategyFor(name string) *strategyCounter {
	v, _ := strategyStats.LoadOrStore(name, &strategyCounter{})
	return v.(*strategyCounter)
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	m := map[string]int64{
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"placeholder_results":  metrics.PlaceholderResults.Load(),
		"metadata_requests":    metrics.MetadataRequests.Load(),
		"channel_requests":     metrics.ChannelRequests.Load(),
		"summary_calls":        metrics.SummaryCalls.Load(),
		"summary_errors":       metrics.SummaryErrors.Load(),
		"fetch_requests":       metrics.FetchRequests.Load(),
		"fetch_errors":         metrics.FetchErrors.Load(),
		"history_writes":       metrics.HistoryWrites.Load(),
		"history_write_errors": metrics.HistoryWriteErrors.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
	strategyStats.Range(func(k, v any) bool {
		c := v.(*strategyCounter)
		m["strategy_"+k.(string)+"_ok"] = c.ok.Load()
		m["strategy_"+k.(string)+"_fail"] = c.fail.Load()
		return true
	})
	return m
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"transcript_requests", "placeholder_results",
		"metadata_requests", "channel_requests",
		"summary_calls", "summary_errors",
		"fetch_requests", "fetch_errors",
		"history_writes", "history_write_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
		delete(m, k)
	}
	// strategy counters, in a stable order
	var rest []string
	for k := range m {
		rest = append(rest, k)
	}
	slices.Sort(rest)
	for _, k := range rest {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for youtube/ and summary/ sub-packages.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrPlaceholder()        { metrics.PlaceholderResults.Add(1) }
func IncrMetadataRequests()   { metrics.MetadataRequests.Add(1) }
func IncrChannelRequests()    { metrics.ChannelRequests.Add(1) }
func IncrSummaryCalls()       { metrics.SummaryCalls.Add(1) }
func IncrSummaryErrors()      { metrics.SummaryErrors.Add(1) }
func IncrHistoryWrite(ok bool) {
	if ok {
		metrics.HistoryWrites.Add(1)
		return
	}
	metrics.HistoryWriteErrors.Add(1)
}

// IncrStrategy records the outcome of one transcript strategy attempt.
func IncrStrategy(name string, ok bool) {
	c := strategyFor(name)
	if ok {
		c.ok.Add(1)
		return
	}
	c.fail.Add(1)
}
