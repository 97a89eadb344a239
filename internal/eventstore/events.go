package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types written by the generator.
const (
	TypeRunStarted     = "run_started"
	TypeClassCompleted = "class_completed"
	TypeRunFinished    = "run_finished"
)

// RunStarted is the payload of TypeRunStarted.
type RunStarted struct {
	OutputDir   string `json:"output_dir"`
	Domain      string `json:"domain"`
	Concurrency int    `json:"concurrency"`
}

// ClassCompleted is the payload of TypeClassCompleted.
type ClassCompleted struct {
	Class       string `json:"class"`
	Generated   int    `json:"generated"`
	Unchanged   int    `json:"unchanged"`
	Failed      int    `json:"failed"`
	Unavailable bool   `json:"unavailable,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// RunFinished is the payload of TypeRunFinished.
type RunFinished struct {
	Outcome    string         `json:"outcome"`
	Counts     map[string]int `json:"counts"`
	Total      int            `json:"total"`
	Failures   int            `json:"failures"`
	DurationMS int64          `json:"duration_ms"`
}

// AppendJSON marshals payload and appends it.
func AppendJSON(ctx context.Context, s Store, runID, eventType string, payload any, metadata map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return s.Append(ctx, runID, eventType, data, metadata)
}

// DecodeRunFinished unmarshals the payload of a run_finished event.
func DecodeRunFinished(e Event) (RunFinished, error) {
	var rf RunFinished
	if e.Type() != TypeRunFinished {
		return rf, fmt.Errorf("event %d is %s, not %s", e.ID(), e.Type(), TypeRunFinished)
	}
	if err := json.Unmarshal(e.Payload(), &rf); err != nil {
		return rf, fmt.Errorf("unmarshal run_finished: %w", err)
	}
	return rf, nil
}

// Duration converts a stored millisecond count back to a duration.
func (rf RunFinished) Duration() time.Duration {
	return time.Duration(rf.DurationMS) * time.Millisecond
}
