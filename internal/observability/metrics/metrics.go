package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebMetrics exposes counters/histograms for the booking front.
type WebMetrics struct {
	httpTotal       *prometheus.CounterVec
	backendTotal    *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	monthFetchTotal *prometheus.CounterVec
	reviewsCache    *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
}

func NewWebMetrics(reg prometheus.Registerer) *WebMetrics {
	m := &WebMetrics{
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meister",
			Subsystem: "web",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served",
		}, []string{"route", "status"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meister",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total requests sent to the booking backend",
		}, []string{"endpoint", "status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meister",
			Subsystem: "backend",
			Name:      "request_latency_seconds",
			Help:      "Latency of booking backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		monthFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meister",
			Subsystem: "availability",
			Name:      "month_fetch_total",
			Help:      "Month availability fetches by outcome",
		}, []string{"outcome"}),
		reviewsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meister",
			Subsystem: "reviews",
			Name:      "cache_total",
			Help:      "Reviews cache lookups by result",
		}, []string{"result"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meister",
			Subsystem: "web",
			Name:      "sessions_active",
			Help:      "Visitor sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpTotal, m.backendTotal, m.backendLatency, m.monthFetchTotal, m.reviewsCache, m.sessionsActive)
	return m
}

func (m *WebMetrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveBackend records one backend round trip. status 0 means the
// request never got an answer.
func (m *WebMetrics) ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendTotal.WithLabelValues(endpoint, label).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *WebMetrics) ObserveMonthFetch(outcome string) {
	if m == nil {
		return
	}
	m.monthFetchTotal.WithLabelValues(outcome).Inc()
}

func (m *WebMetrics) ObserveReviewsCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reviewsCache.WithLabelValues(result).Inc()
}

func (m *WebMetrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}
