package metrics

import "time"

// Generation outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Download result labels for the three-way distribution outcome.
const (
	DownloadOK       = "ok"
	DownloadNotFound = "not_found"
	DownloadGone     = "gone"
	DownloadError    = "error"
)

// Recorder defines observability hooks for generation and distribution
// metrics. Implementations may forward to Prometheus, OpenTelemetry, etc.
// All methods must be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveGenerateDuration(d time.Duration)
	IncGenerateOutcome(outcome string)
	IncDownload(result string)
	IncSweepEvicted(n int)
	IncSweepDeleteFailure()
	SetActiveFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGenerateDuration(time.Duration) {}
func (NoopRecorder) IncGenerateOutcome(string)             {}
func (NoopRecorder) IncDownload(string)                    {}
func (NoopRecorder) IncSweepEvicted(int)                   {}
func (NoopRecorder) IncSweepDeleteFailure()                {}
func (NoopRecorder) SetActiveFiles(int)                    {}
