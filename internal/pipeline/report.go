package pipeline

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/verify"
	"git.home.luguber.info/inful/seogen/internal/version"
)

// Outcome is the typed enumeration of final run result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Failure records one entity that could not be generated.
type Failure struct {
	Class  string    `json:"class"`
	Entity string    `json:"entity"`
	Stage  StageName `json:"stage"`
	Code   string    `json:"code"`
	Error  string    `json:"error"`
}

// Report captures the result of one generation run.
type Report struct {
	SchemaVersion int
	RunID         string
	Start         time.Time
	End           time.Time

	CityCount    int
	ProductCount int
	StaticCount  int
	TotalCount   int
	// Unchanged counts pages whose bytes already matched; they are included in the per-class counts.
	Unchanged int
	// Duplicates counts source entries skipped because an identical entity was already seen.
	Duplicates int

	Failures []Failure
	// ClassErrors maps an entity class to the source outage that aborted it.
	ClassErrors map[string]string

	Errors          []error // fatal errors that aborted the run
	Warnings        []error // stage-level partial failures
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind

	Verification *verify.Result
	Outcome      Outcome
	Version      string
}

// NewReport constructs an empty report for runID.
func NewReport(runID string, start time.Time) *Report {
	return &Report{
		SchemaVersion:   1,
		RunID:           runID,
		Start:           start,
		ClassErrors:     make(map[string]string),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		Version:         version.Version,
	}
}

func (r *Report) recordStage(stage StageName, dur time.Duration, se *StageError, res StageResult) {
	r.StageDurations[stage] = dur
	if se == nil {
		return
	}
	r.StageErrorKinds[stage] = se.Kind
	switch res {
	case StageResultWarning:
		r.Warnings = append(r.Warnings, se)
	default:
		r.Errors = append(r.Errors, se)
	}
}

// addFailures appends fs and keeps the list sorted so the report does not
// depend on worker completion order.
func (r *Report) addFailures(fs ...Failure) {
	r.Failures = append(r.Failures, fs...)
	sort.SliceStable(r.Failures, func(i, j int) bool {
		a, b := r.Failures[i], r.Failures[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.Code < b.Code
	})
}

// Finish sets the end time and recomputes the total.
func (r *Report) Finish(end time.Time) {
	r.End = end
	r.TotalCount = r.CityCount + r.ProductCount + r.StaticCount
}

// DeriveOutcome sets Outcome from the recorded errors, warnings and counts.
func (r *Report) DeriveOutcome() {
	for _, e := range r.Errors {
		var se *StageError
		if stdErrors.As(e, &se) && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	switch {
	case len(r.Errors) > 0, r.TotalCount == 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0, len(r.Failures) > 0, len(r.ClassErrors) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// ExitCode is the process status for this run: non-zero after a fatal error,
// a class-level source outage, or when no page was generated.
func (r *Report) ExitCode() int {
	if len(r.Errors) > 0 {
		return errors.ExitCode(r.Errors[0])
	}
	if len(r.ClassErrors) > 0 {
		return errors.ExitSourceUnavailable
	}
	if r.TotalCount == 0 {
		return errors.ExitNoSuccess
	}
	return 0
}

// Counts returns generated page counts keyed by class.
func (r *Report) Counts() map[string]int {
	return map[string]int{
		"cities":   r.CityCount,
		"products": r.ProductCount,
		"static":   r.StaticCount,
	}
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("cities=%d products=%d static=%d total=%d unchanged=%d duplicates=%d failed=%d duration=%s outcome=%s",
		r.CityCount, r.ProductCount, r.StaticCount, r.TotalCount, r.Unchanged, r.Duplicates,
		len(r.Failures), dur.Truncate(time.Millisecond), string(r.Outcome))
}

// WriteText prints the console report: totals, source outages, every failed
// entity and verification problems.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated pages (run %s):\n", r.RunID)
	fmt.Fprintf(&b, "  cities:   %d\n", r.CityCount)
	fmt.Fprintf(&b, "  products: %d\n", r.ProductCount)
	fmt.Fprintf(&b, "  static:   %d\n", r.StaticCount)
	fmt.Fprintf(&b, "  total:    %d", r.TotalCount)
	if r.Unchanged > 0 {
		fmt.Fprintf(&b, " (%d unchanged)", r.Unchanged)
	}
	b.WriteString("\n")
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, "Skipped duplicates: %d\n", r.Duplicates)
	}

	if len(r.ClassErrors) > 0 {
		classes := make([]string, 0, len(r.ClassErrors))
		for c := range r.ClassErrors {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		b.WriteString("Unavailable sources:\n")
		for _, c := range classes {
			fmt.Fprintf(&b, "  %s: %s\n", c, r.ClassErrors[c])
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "Failed entities (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", f.Code, f.Entity, f.Stage, f.Error)
		}
	}

	if v := r.Verification; v != nil {
		fmt.Fprintf(&b, "Verified: %d city, %d product, %d static documents\n",
			v.Counts[verify.CategoryCity], v.Counts[verify.CategoryProduct], v.Counts[verify.CategoryStatic])
		for _, s := range v.Samples {
			fmt.Fprintf(&b, "  %s: %s\n", s.Path, s.Title)
		}
		for _, is := range v.Issues {
			fmt.Fprintf(&b, "  problem in %s: %s\n", is.Path, is.Problem)
		}
	}

	for _, e := range r.Errors {
		fmt.Fprintf(&b, "Error: %v\n", e)
	}
	fmt.Fprintf(&b, "Outcome: %s\n", r.Outcome)

	_, err := io.WriteString(w, b.String())
	return err
}

// Persist writes the report as JSON to path, via a temp file and rename.
func (r *Report) Persist(path string) error {
	if r.End.IsZero() {
		r.Finish(time.Now())
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WriteFailure(path, fmt.Errorf("ensure report directory: %w", err))
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o600); err != nil {
		return errors.WriteFailure(path, fmt.Errorf("write temp report: %w", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WriteFailure(path, fmt.Errorf("atomic rename report: %w", err))
	}
	return nil
}

// SanitizedCopy converts error fields to strings for JSON output.
func (r *Report) SanitizedCopy() *ReportSerializable {
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[string(k)] = v.Milliseconds()
	}
	kinds := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		kinds[string(k)] = string(v)
	}
	failures := r.Failures
	if failures == nil {
		failures = []Failure{}
	}
	s := &ReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		RunID:            r.RunID,
		Start:            r.Start,
		End:              r.End,
		CityCount:        r.CityCount,
		ProductCount:     r.ProductCount,
		StaticCount:      r.StaticCount,
		TotalCount:       r.TotalCount,
		Unchanged:        r.Unchanged,
		Duplicates:       r.Duplicates,
		Failures:         failures,
		ClassErrors:      r.ClassErrors,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  kinds,
		Verification:     r.Verification,
		Outcome:          string(r.Outcome),
		Version:          r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// ReportSerializable mirrors Report with string errors for JSON output.
type ReportSerializable struct {
	SchemaVersion    int               `json:"schema_version"`
	RunID            string            `json:"run_id"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	CityCount        int               `json:"city_count"`
	ProductCount     int               `json:"product_count"`
	StaticCount      int               `json:"static_count"`
	TotalCount       int               `json:"total_count"`
	Unchanged        int               `json:"unchanged"`
	Duplicates       int               `json:"duplicates"`
	Failures         []Failure         `json:"failures"`
	ClassErrors      map[string]string `json:"class_errors,omitempty"`
	Errors           []string          `json:"errors"`
	Warnings         []string          `json:"warnings"`
	StageDurationsMS map[string]int64  `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string `json:"stage_error_kinds,omitempty"`
	Verification     *verify.Result    `json:"verification,omitempty"`
	Outcome          string            `json:"outcome"`
	Version          string            `json:"version,omitempty"`
}
