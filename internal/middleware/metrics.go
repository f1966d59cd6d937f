package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics: счётчики HTTP-запросов и исходов аутентификации.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authTotal       *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg (prometheus.DefaultRegisterer, если nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumen",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		authTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "auth_events_total",
			Help:      "Authentication events by operation and outcome",
		}, []string{"op", "outcome"}),
	}
}

// Handler учитывает каждый запрос. Путь в метки не попадает, чтобы не раздувать кардинальность.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{status: http.StatusOK}
		next.ServeHTTP(&loggingResponseWriter{ResponseWriter: w, data: data}, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(data.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// AuthEvent фиксирует исход операции (register, login, me).
func (m *Metrics) AuthEvent(op, outcome string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(op, outcome).Inc()
}
