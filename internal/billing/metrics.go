package billing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "billing",
		Name:      "transactions_total",
		Help:      "Total number of billing transactions emitted broken down by kind.",
	}, []string{"kind"})

	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "billing",
		Name:      "failures_total",
		Help:      "Total number of billing transactions that could not be written broken down by kind.",
	}, []string{"kind"})
)
