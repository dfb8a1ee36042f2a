package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service collectors.
type Registry struct {
	reg *prometheus.Registry

	// Resolutions counts served previews by tier and kind.
	Resolutions *prometheus.CounterVec
	// ResolveFailures counts failed preview requests by reason.
	ResolveFailures *prometheus.CounterVec
	// TierFallthroughs counts remote tier failures that fell through to generation.
	TierFallthroughs prometheus.Counter
	// Reconciles counts reconciliation jobs by outcome.
	Reconciles       *prometheus.CounterVec
	ReconcileDropped prometheus.Counter
	GenerateSeconds  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "printshop_preview_resolutions_total",
		Help: "Previews served, by tier and kind.",
	}, []string{"tier", "kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "printshop_preview_failures_total",
		Help: "Preview requests that failed, by reason.",
	}, []string{"reason"})
	fallthroughs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "printshop_preview_remote_fallthrough_total",
		Help: "Remote cache reads that failed and fell through to generation.",
	})
	reconciles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "printshop_reconcile_jobs_total",
		Help: "Reconciliation jobs, by outcome.",
	}, []string{"outcome"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "printshop_reconcile_dropped_total",
		Help: "Reconciliation jobs dropped because the queue was full or stopped.",
	})
	generate := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "printshop_preview_generate_seconds",
		Help:    "Time spent generating previews.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(resolutions, failures, fallthroughs, reconciles, dropped, generate)
	return &Registry{
		reg:              r,
		Resolutions:      resolutions,
		ResolveFailures:  failures,
		TierFallthroughs: fallthroughs,
		Reconciles:       reconciles,
		ReconcileDropped: dropped,
		GenerateSeconds:  generate,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
