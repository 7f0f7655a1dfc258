package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLLM(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLLM("mistral", "ok", 20*time.Millisecond)
	m.ObserveLLM("mistral", "fallback", 0)
	m.ObserveLLM("mistral", "fallback", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("mistral", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("mistral", "fallback")))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)

	first.ObserveRequest("GET", "/health", 200, time.Millisecond)
	second.ObserveRequest("GET", "/health", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.requestTotal.WithLabelValues("GET", "/health", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.RateLimited("/")
		m.ObserveLLM("mock", "ok", 0)
	})
}
