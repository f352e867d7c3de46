package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "gitbook2mkdocs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	reg           *prom.Registry
	pages         *prom.CounterVec
	passRewrites  *prom.CounterVec
	auditFindings *prom.CounterVec
	hookDuration  *prom.HistogramVec
	buildDuration prom.Histogram
	mirrorSyncs   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.pages = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed by outcome",
		}, []string{"result"})
		pr.passRewrites = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pass_rewrites_total",
			Help:      "GitBook constructs rewritten, by translation pass",
		}, []string{"pass"})
		pr.auditFindings = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "audit_findings_total",
			Help:      "Residual GitBook markup and broken asset references found after translation",
		}, []string{"kind"})
		pr.hookDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "hook_duration_seconds",
			Help:      "Duration of lifecycle hooks",
			Buckets:   prom.DefBuckets,
		}, []string{"hook", "result"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build or conversion duration",
			Buckets:   prom.DefBuckets,
		})
		pr.mirrorSyncs = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_syncs_total",
			Help:      "Mirror sync attempts by result",
		}, []string{"result"})
		reg.MustRegister(pr.pages, pr.passRewrites, pr.auditFindings, pr.hookDuration, pr.buildDuration, pr.mirrorSyncs)
	})
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes every gathered metric to path in the text exposition
// format, for the node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

func (p *PrometheusRecorder) IncPage(result ResultLabel) {
	if p == nil || p.pages == nil {
		return
	}
	p.pages.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddPassRewrites(pass string, n int) {
	if p == nil || p.passRewrites == nil || n <= 0 {
		return
	}
	p.passRewrites.WithLabelValues(pass).Add(float64(n))
}

func (p *PrometheusRecorder) IncAuditFinding(kind string) {
	if p == nil || p.auditFindings == nil {
		return
	}
	p.auditFindings.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveHookDuration(hook string, d time.Duration, success bool) {
	if p == nil || p.hookDuration == nil {
		return
	}
	p.hookDuration.WithLabelValues(hook, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncMirrorSync(success bool) {
	if p == nil || p.mirrorSyncs == nil {
		return
	}
	p.mirrorSyncs.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
