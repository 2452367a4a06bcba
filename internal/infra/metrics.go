package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько заняли вызовы бэкенда авторизации
	UpstreamDuration *prometheus.HistogramVec

	// Traffic: общее кол-во вызовов бэкенда
	UpstreamRequests *prometheus.CounterVec

	// Errors: классификация отказов
	UpstreamErrors *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker (0 - closed, 1 - half-open, 2 - open)
	CircuitBreakerState *prometheus.GaugeVec

	// Действия администраторов по типам
	AdminActions *prometheus.CounterVec

	// Audit: заполненность буфера (backpressure)
	AuditBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		UpstreamDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authconsole_upstream_duration_seconds",
			Help:    "Histogram of auth API call latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"path", "status"}),

		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "authconsole_upstream_requests_total",
			Help: "Total number of auth API calls.",
		}, []string{"method", "path"}),

		UpstreamErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "authconsole_upstream_errors_total",
			Help: "Total number of auth API failures by type.",
		}, []string{"type"}), // типы: transport, breaker_open, rate_limit, server_error

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "authconsole_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),

		AdminActions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "authconsole_admin_actions_total",
			Help: "Admin actions forwarded to the auth API.",
		}, []string{"action", "result"}),

		AuditBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "authconsole_audit_buffer_utilization",
			Help: "Current number of entries in audit buffer.",
		}),
	}
}
