package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncEntityResult("cities", ResultSuccess)
	pr.IncEntityResult("cities", ResultSuccess)
	pr.IncEntityResult("cities", ResultFailed)
	pr.IncStageResult("cities", ResultWarning)
	pr.IncRunOutcome("success")
	pr.SetConcurrency(8)
	pr.ObserveStageDuration("cities", 120*time.Millisecond)
	pr.ObserveRunDuration(time.Second)
	pr.ObserveFetchDuration("products", 10*time.Millisecond, false)

	families, err := pr.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			// labels arrive sorted by name
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "|" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.InDelta(t, 2, values["seogen_entity_results_total|cities|success"], 0)
	assert.InDelta(t, 1, values["seogen_entity_results_total|cities|failed"], 0)
	assert.InDelta(t, 1, values["seogen_stage_results_total|warning|cities"], 0)
	assert.InDelta(t, 1, values["seogen_run_outcomes_total|success"], 0)
	assert.InDelta(t, 8, values["seogen_worker_concurrency"], 0)
	assert.InDelta(t, 1, values["seogen_fetch_duration_seconds|products|failed"], 0)
	assert.InDelta(t, 1, values["seogen_stage_duration_seconds|cities"], 0)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncEntityResult("products", ResultSuccess)
	path := filepath.Join(t.TempDir(), "seogen.prom")

	require.NoError(t, pr.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `seogen_entity_results_total{class="products",result="success"} 1`))
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncEntityResult("cities", ResultSuccess)
		pr.ObserveStageDuration("x", time.Second)
		pr.IncRunOutcome("failed")
	})
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncEntityResult("cities", ResultSuccess)
	var _ Recorder = (*PrometheusRecorder)(nil)
}
