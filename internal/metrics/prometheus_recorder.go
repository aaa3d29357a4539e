package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "panini"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	pageDuration      *prom.HistogramVec
	pageOutcomes      *prom.CounterVec
	buildOutcomes     *prom.CounterVec
	pagesParsed       prom.Gauge
	renderConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		}),
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of individual page renders",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		}, []string{"status"}),
		pageOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_outcomes_total",
			Help:      "Rendered and failed pages",
		}, []string{"status"}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"}),
		pagesParsed: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_parsed",
			Help:      "Pages parsed in the last run",
		}),
		renderConcurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "render_concurrency",
			Help:      "Render fan-out limit of the last run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.pageDuration, pr.pageOutcomes,
		pr.buildOutcomes, pr.pagesParsed, pr.renderConcurrency)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageDuration(status string, d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageOutcome(status string) {
	if p == nil {
		return
	}
	p.pageOutcomes.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPagesParsed(n int) {
	if p == nil {
		return
	}
	p.pagesParsed.Set(float64(n))
}

// SetRenderConcurrency records the fan-out limit; 0 means unbounded.
func (p *PrometheusRecorder) SetRenderConcurrency(n int) {
	if p == nil {
		return
	}
	p.renderConcurrency.Set(float64(n))
}
