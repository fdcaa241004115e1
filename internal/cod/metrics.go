package cod

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"depotChangeManagement/internal/apperr"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "Total number of COD lifecycle operations broken down by operation and result.",
	}, []string{"operation", "result"})

	operationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cod",
		Subsystem: "lifecycle",
		Name:      "latency_seconds",
		Help:      "Latency distribution for COD lifecycle operations.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	expiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cod",
		Subsystem: "lifecycle",
		Name:      "expired_total",
		Help:      "Total number of requests moved to EXPIRED by the sweep.",
	})
)

func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(apperr.KindOf(err)))
	}
	operations.WithLabelValues(op, result).Inc()
	operationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
