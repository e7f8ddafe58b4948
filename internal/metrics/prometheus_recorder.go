package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	scanDuration    *prom.HistogramVec
	replaceDuration *prom.HistogramVec
	scanOutcomes    *prom.CounterVec
	replaceOutcomes *prom.CounterVec
	rangesReplaced  prom.Counter
	fontLoads       *prom.CounterVec
	chunkYields     prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.scanDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "fontsweep",
			Name:      "scan_duration_seconds",
			Help:      "Duration of font inventory scans",
			Buckets:   prom.DefBuckets,
		}, []string{"scope"})
		pr.replaceDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "fontsweep",
			Name:      "replace_duration_seconds",
			Help:      "Duration of font replacement operations",
			Buckets:   prom.DefBuckets,
		}, []string{"scope"})
		pr.scanOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fontsweep",
			Name:      "scan_outcomes_total",
			Help:      "Scan outcomes by final status",
		}, []string{"outcome"})
		pr.replaceOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fontsweep",
			Name:      "replace_outcomes_total",
			Help:      "Replacement outcomes by final status",
		}, []string{"outcome"})
		pr.rangesReplaced = prom.NewCounter(prom.CounterOpts{
			Namespace: "fontsweep",
			Name:      "ranges_replaced_total",
			Help:      "Character ranges rewritten by replacement operations",
		})
		pr.fontLoads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fontsweep",
			Name:      "font_load_results_total",
			Help:      "Font load results by success/failure",
		}, []string{"result"})
		pr.chunkYields = prom.NewCounter(prom.CounterOpts{
			Namespace: "fontsweep",
			Name:      "chunk_yields_total",
			Help:      "Cooperative yields between traversal chunks",
		})
		reg.MustRegister(pr.scanDuration, pr.replaceDuration, pr.scanOutcomes,
			pr.replaceOutcomes, pr.rangesReplaced, pr.fontLoads, pr.chunkYields)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveScanDuration(scope string, d time.Duration) {
	if p == nil || p.scanDuration == nil {
		return
	}
	p.scanDuration.WithLabelValues(scope).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveReplaceDuration(scope string, d time.Duration) {
	if p == nil || p.replaceDuration == nil {
		return
	}
	p.replaceDuration.WithLabelValues(scope).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncScanOutcome(outcome OutcomeLabel) {
	if p == nil || p.scanOutcomes == nil {
		return
	}
	p.scanOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncReplaceOutcome(outcome OutcomeLabel) {
	if p == nil || p.replaceOutcomes == nil {
		return
	}
	p.replaceOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddRangesReplaced(n int) {
	if p == nil || p.rangesReplaced == nil || n <= 0 {
		return
	}
	p.rangesReplaced.Add(float64(n))
}

func (p *PrometheusRecorder) IncFontLoadResult(success bool) {
	if p == nil || p.fontLoads == nil {
		return
	}
	label := "failure"
	if success {
		label = "success"
	}
	p.fontLoads.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) IncChunkYield() {
	if p == nil || p.chunkYields == nil {
		return
	}
	p.chunkYields.Inc()
}
