package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	commandsTotal       *prometheus.CounterVec
	requestsTotal       *prometheus.CounterVec
	requestLatency      *prometheus.HistogramVec
	streamClientsActive prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gincana_commands_total",
			Help: "Total number of coordinator commands, by command and outcome.",
		}, []string{"command", "outcome"})

		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gincana_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gincana_http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gincana_stream_clients_active",
			Help: "Number of websocket state stream clients currently connected.",
		})

		prometheus.MustRegister(commandsTotal, requestsTotal, requestLatency, streamClientsActive)
	})
}

// CommandsTotal exposes the coordinator command counter.
func CommandsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return commandsTotal
}

// RequestsTotal exposes the HTTP request counter.
func RequestsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the HTTP latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatency
}

// StreamClientsActive exposes the stream client gauge.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}
