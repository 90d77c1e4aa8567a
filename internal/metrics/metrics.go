package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Login attempts by method and outcome"},
		[]string{"method", "outcome"},
	)
	ListToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mylist_toggles_total", Help: "List toggles by category and operation (add|remove|no_effect)"},
		[]string{"category", "op"},
	)
	ToggleRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "mylist_toggle_retries_total", Help: "Toggle writes that matched nothing and were retried"},
	)
	ProfileCapacityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "profile_capacity_rejections_total", Help: "Profile creations refused by the per-user cap"},
	)
)

var registerOnce sync.Once

// MustRegister registers the collectors with the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight,
			AuthAttempts, ListToggles, ToggleRetries, ProfileCapacityRejections)
	})
}
