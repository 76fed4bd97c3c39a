// Package metrics registers the dashboard's prometheus collectors:
//
//	arbdash_backend_fetches_total{view,outcome}
//	arbdash_backend_fetch_seconds{view}
//	arbdash_superseded_results_total{view}
//	arbdash_sessions
//
// plus the go_* and process_* collectors, exposed through Handler.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry = prometheus.NewRegistry()

	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbdash_backend_fetches_total",
			Help: "Backend reads by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	fetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbdash_backend_fetch_seconds",
			Help:    "Backend read latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	superseded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbdash_superseded_results_total",
			Help: "Fetch results dropped because a newer request was issued",
		},
		[]string{"view"},
	)

	sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbdash_sessions",
			Help: "Open browser sessions",
		},
	)
)

// Init registers all collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		registry.MustRegister(fetches, fetchSeconds, superseded, sessions)
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves the registered collectors in the prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected" // the backend answered but the request or its body was unusable
	OutcomeOutage    = "outage"
	OutcomeCancelled = "cancelled"
)

// ObserveFetch records one backend read.
func ObserveFetch(view, outcome string, d time.Duration) {
	fetches.WithLabelValues(view, outcome).Inc()
	fetchSeconds.WithLabelValues(view).Observe(d.Seconds())
}

// IncSuperseded counts a result discarded in favour of a newer request.
func IncSuperseded(view string) {
	superseded.WithLabelValues(view).Inc()
}

func SessionOpened() { sessions.Inc() }

func SessionClosed() { sessions.Dec() }
