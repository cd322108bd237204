package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, "ecopoint")
	require.NoError(t, err)

	c.ObserveSearch("nearest", OutcomeFound, 0.01)
	c.ObserveSearch("nearest", OutcomeFound, 0.02)
	c.ObserveSearch("nearest", OutcomeNoMatch, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Searches.WithLabelValues("nearest", OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Searches.WithLabelValues("nearest", OutcomeNoMatch)))
}

func TestCollector_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg, "ecopoint")
	require.NoError(t, err)
	second, err := NewCollector(reg, "ecopoint")
	require.NoError(t, err)

	first.CacheResult("hit")
	second.CacheResult("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.CacheRequests.WithLabelValues("hit")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveSearch("nearest", OutcomeFound, 1)
		c.ObserveFanOut(3, 10)
		c.CacheResult("miss")
		c.WorkerMessage("ok")
		c.HTTPRequest("POST", "/listaEcopontos", "200")
	})
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, "ecopoint")
	require.NoError(t, err)
	c.WorkerMessage("ok")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ecopoint_worker_messages_total{status="ok"} 1`)
}
