package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	generateDuration prom.Histogram
	generateOutcome  *prom.CounterVec
	downloads        *prom.CounterVec
	sweepEvicted     prom.Counter
	sweepDeleteFails prom.Counter
	activeFiles      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.generateDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "contractforge",
			Name:      "generate_duration_seconds",
			Help:      "Duration of document generation calls",
			Buckets:   prom.DefBuckets,
		})
		pr.generateOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contractforge",
			Name:      "generate_outcomes_total",
			Help:      "Generation outcomes by final status",
		}, []string{"outcome"})
		pr.downloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contractforge",
			Name:      "downloads_total",
			Help:      "Download requests by result (ok, not_found, gone, error)",
		}, []string{"result"})
		pr.sweepEvicted = prom.NewCounter(prom.CounterOpts{
			Namespace: "contractforge",
			Name:      "sweep_evicted_total",
			Help:      "Registry entries evicted by expiry sweeps",
		})
		pr.sweepDeleteFails = prom.NewCounter(prom.CounterOpts{
			Namespace: "contractforge",
			Name:      "sweep_delete_failures_total",
			Help:      "Best-effort artifact deletions that failed during sweeps",
		})
		pr.activeFiles = prom.NewGauge(prom.GaugeOpts{
			Namespace: "contractforge",
			Name:      "active_files",
			Help:      "Registered artifacts not yet past expiry",
		})
		reg.MustRegister(pr.generateDuration, pr.generateOutcome, pr.downloads,
			pr.sweepEvicted, pr.sweepDeleteFails, pr.activeFiles)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveGenerateDuration(d time.Duration) {
	if p == nil || p.generateDuration == nil {
		return
	}
	p.generateDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGenerateOutcome(outcome string) {
	if p == nil || p.generateOutcome == nil {
		return
	}
	p.generateOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncDownload(result string) {
	if p == nil || p.downloads == nil {
		return
	}
	p.downloads.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncSweepEvicted(n int) {
	if p == nil || p.sweepEvicted == nil || n <= 0 {
		return
	}
	p.sweepEvicted.Add(float64(n))
}

func (p *PrometheusRecorder) IncSweepDeleteFailure() {
	if p == nil || p.sweepDeleteFails == nil {
		return
	}
	p.sweepDeleteFails.Inc()
}

func (p *PrometheusRecorder) SetActiveFiles(n int) {
	if p == nil || p.activeFiles == nil {
		return
	}
	p.activeFiles.Set(float64(n))
}
