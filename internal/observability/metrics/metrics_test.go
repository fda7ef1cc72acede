package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWebMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebMetrics(reg)

	m.ObserveBackend("barbers", 200, 20*time.Millisecond)
	m.ObserveBackend("barbers", 0, time.Second)
	m.ObserveHTTP("/booking", 200)
	m.ObserveHTTP("", 404)
	m.ObserveMonthFetch("loaded")
	m.ObserveReviewsCache(true)
	m.SetSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendTotal.WithLabelValues("barbers", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendTotal.WithLabelValues("barbers", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpTotal.WithLabelValues("unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviewsCache.WithLabelValues("hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsActive))
}

func TestWebMetricsNilSafe(t *testing.T) {
	var m *WebMetrics
	m.ObserveBackend("barbers", 200, time.Millisecond)
	m.ObserveHTTP("/", 200)
	m.ObserveMonthFetch("failed")
	m.ObserveReviewsCache(false)
	m.SetSessions(1)
}
