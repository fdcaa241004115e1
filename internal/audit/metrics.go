package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "audit",
		Name:      "writes_total",
		Help:      "Total number of audit log entries written broken down by action.",
	}, []string{"action"})

	writeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "audit",
		Name:      "write_failures_total",
		Help:      "Total number of audit log writes that failed broken down by action.",
	}, []string{"action"})
)
