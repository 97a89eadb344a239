package metrics

import "time"

// ResultLabel enumerates per-entity and per-stage result categories.
type ResultLabel string

const (
	ResultSuccess   ResultLabel = "success"
	ResultUnchanged ResultLabel = "unchanged"
	ResultDuplicate ResultLabel = "duplicate"
	ResultFailed    ResultLabel = "failed"
	ResultWarning   ResultLabel = "warning"
	ResultFatal     ResultLabel = "fatal"
	ResultSkipped   ResultLabel = "skipped"
)

// Recorder receives generator observations. NoopRecorder is used when metrics
// are not configured.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // success|warning|failed
	ObserveFetchDuration(class string, d time.Duration, success bool)
	IncEntityResult(class string, result ResultLabel)
	SetConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) IncStageResult(string, ResultLabel)               {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                 {}
func (NoopRecorder) IncRunOutcome(string)                             {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncEntityResult(string, ResultLabel)              {}
func (NoopRecorder) SetConcurrency(int)                               {}
