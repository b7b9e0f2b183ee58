package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"server", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lodestone",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "method", "path", "status"},
	)

	datagramsIn = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "datagrams_in_total",
			Help:      "Datagrams received and decoded.",
		},
	)
	datagramsOut = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "datagrams_out_total",
			Help:      "Datagrams sent.",
		},
	)
	receiveErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "receive_errors_total",
			Help:      "Receive failures by kind (decode, io).",
		},
		[]string{"kind"},
	)
	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "send_failures_total",
			Help:      "Outbound sends that failed at the transport.",
		},
	)
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "sessions_active",
			Help:      "Live sessions in the registry.",
		},
	)
	sessionsAdmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "sessions_admitted_total",
			Help:      "Sessions created on first contact.",
		},
	)
	sessionsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "sessions_rejected_total",
			Help:      "Senders rejected because the registry was full.",
		},
	)
	sessionsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "warden",
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped by the reaper.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			datagramsIn, datagramsOut, receiveErrors, sendFailures,
			sessionsActive, sessionsAdmitted, sessionsRejected, sessionsEvicted,
		)
	})
}

func RecordHTTPRequest(server, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(server, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(server, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordDatagramIn() {
	RegisterMetrics()
	datagramsIn.Inc()
}

func RecordDatagramOut() {
	RegisterMetrics()
	datagramsOut.Inc()
}

func RecordReceiveError(kind string) {
	RegisterMetrics()
	receiveErrors.WithLabelValues(kind).Inc()
}

func RecordSendFailure() {
	RegisterMetrics()
	sendFailures.Inc()
}

func SetSessionsActive(n int) {
	RegisterMetrics()
	sessionsActive.Set(float64(n))
}

func RecordSessionAdmitted() {
	RegisterMetrics()
	sessionsAdmitted.Inc()
}

func RecordSessionRejected() {
	RegisterMetrics()
	sessionsRejected.Inc()
}

func RecordSessionEvicted() {
	RegisterMetrics()
	sessionsEvicted.Inc()
}
