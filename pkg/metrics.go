package wifiinfo

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PollsTotal counts poll iterations that read a snapshot
	PollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wifiinfo",
			Name:      "polls_total",
			Help:      "Total number of observer polls that read the connection",
		},
	)

	// PollsSkipped counts poll iterations skipped for lack of permission or capability
	PollsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiinfo",
			Name:      "polls_skipped_total",
			Help:      "Total number of observer polls skipped without reading",
		},
		[]string{"reason"},
	)

	// ChangesEmitted counts onWifiInfoChanged notifications
	ChangesEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wifiinfo",
			Name:      "changes_emitted_total",
			Help:      "Total number of change notifications emitted",
		},
	)

	// Subscribers tracks the observer reference count
	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifiinfo",
			Name:      "observer_subscribers",
			Help:      "Current number of observer subscribers",
		},
	)

	metricsOnce sync.Once
)

// InitMetrics registers all metrics with the given registerer, or the
// global one when nil. Only the first call has any effect.
func InitMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(PollsTotal, PollsSkipped, ChangesEmitted, Subscribers)
	})
}
