// Package metrics defines observability hooks for scan and replace
// operations behind a Recorder interface, so callers can run with a
// no-op recorder or forward to Prometheus in serve mode.
package metrics

import "time"

// OutcomeLabel enumerates operation result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomePartial OutcomeLabel = "partial"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines the observability hooks. Implementations may
// forward to Prometheus, OpenTelemetry, etc. All methods must be safe
// on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveScanDuration(scope string, d time.Duration)
	ObserveReplaceDuration(scope string, d time.Duration)
	IncScanOutcome(outcome OutcomeLabel)
	IncReplaceOutcome(outcome OutcomeLabel)
	AddRangesReplaced(n int)
	IncFontLoadResult(success bool)
	IncChunkYield()
}

// NoopRecorder is a Recorder that does nothing (default when metrics
// are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveScanDuration(string, time.Duration)    {}
func (NoopRecorder) ObserveReplaceDuration(string, time.Duration) {}
func (NoopRecorder) IncScanOutcome(OutcomeLabel)                  {}
func (NoopRecorder) IncReplaceOutcome(OutcomeLabel)               {}
func (NoopRecorder) AddRangesReplaced(int)                        {}
func (NoopRecorder) IncFontLoadResult(bool)                       {}
func (NoopRecorder) IncChunkYield()                               {}
