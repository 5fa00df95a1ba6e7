package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the delivery code lifecycle
var (
	ValidationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_code_validation_outcomes_total",
			Help: "Validation calls by outcome",
		},
		[]string{"outcome"},
	)

	ValidationConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_code_validation_conflicts_total",
			Help: "Validation attempts re-run after losing a concurrent update",
		},
	)

	DispatchLegsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_code_dispatch_legs_total",
			Help: "Per-leg dispatch results",
		},
		[]string{"result"},
	)

	SMSSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_code_sms_send_duration_seconds",
			Help:    "Duration of SMS provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

var registerOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ValidationOutcomesTotal)
		prometheus.MustRegister(ValidationConflictsTotal)
		prometheus.MustRegister(DispatchLegsTotal)
		prometheus.MustRegister(SMSSendDuration)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
