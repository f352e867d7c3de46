package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncPage(ResultTranslated)
	pr.IncPage(ResultTranslated)
	pr.IncPage(ResultSkipped)
	pr.AddPassRewrites("hints", 3)
	pr.AddPassRewrites("tabs", 0)
	pr.IncAuditFinding("residual_tag")
	pr.ObserveHookDuration("pre_build", 20*time.Millisecond, true)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncMirrorSync(false)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	counters := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "," + lp.GetValue()
			}
			counters[key] = m.GetCounter().GetValue()
		}
	}

	assert.InDelta(t, 2, counters["gitbook2mkdocs_pages_total,translated"], 0)
	assert.InDelta(t, 1, counters["gitbook2mkdocs_pages_total,skipped"], 0)
	assert.InDelta(t, 3, counters["gitbook2mkdocs_pass_rewrites_total,hints"], 0)
	assert.InDelta(t, 1, counters["gitbook2mkdocs_mirror_syncs_total,failed"], 0)
	_, zeroRecorded := counters["gitbook2mkdocs_pass_rewrites_total,tabs"]
	assert.False(t, zeroRecorded)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	RecordStats(pr, map[string]int{"figures": 2, "tabs": 0})

	path := filepath.Join(t.TempDir(), "gitbook2mkdocs.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `gitbook2mkdocs_pass_rewrites_total{pass="figures"} 2`)
	assert.False(t, strings.Contains(text, `pass="tabs"`), "zero counts are not recorded")
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncPage(ResultFailed)
		pr.AddPassRewrites("hints", 1)
		pr.ObserveHookDuration("post_build", time.Second, false)
	})
}
