package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "standin",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "standin",
		Name:      "sweeper_runs_total",
		Help:      "Number of completed expiration sweeps.",
	})

	SweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "standin",
		Name:      "sweeper_expired_delegations_total",
		Help:      "Delegations retired or converted by the sweeper.",
	})

	DelegationsPropagated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "standin",
		Name:      "delegations_propagated_total",
		Help:      "Automatic delegations written by propagation.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
