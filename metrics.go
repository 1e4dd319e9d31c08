package notefavicon

import "time"

// Resolve outcomes reported to a MetricsRecorder.
const (
	OutcomeInline  = "inline"
	OutcomeHit     = "hit"
	OutcomeFailure = "cached_failure"
	OutcomeFetched = "fetched"
	OutcomeEmpty   = "empty"
)

// MetricsRecorder receives cache and fetch events. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	// RecordResolve records one Resolve call by value kind and outcome.
	RecordResolve(kind Kind, outcome string)

	// RecordFetch records a provider fetch and how long it took.
	RecordFetch(success bool, duration time.Duration)

	// RecordCacheWrite records a write of the cache document.
	RecordCacheWrite(success bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordResolve(Kind, string)      {}
func (noopMetrics) RecordFetch(bool, time.Duration) {}
func (noopMetrics) RecordCacheWrite(bool)           {}

var _ MetricsRecorder = noopMetrics{}
