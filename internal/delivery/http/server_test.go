package http_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/config"
	delivery "github.com/ecopoint-service/internal/delivery/http"
	"github.com/ecopoint-service/internal/delivery/http/handler"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/repository/memory"
	"github.com/ecopoint-service/internal/usecase"
)

func newServer(t *testing.T) *delivery.Server {
	t.Helper()
	collector, err := metrics.NewCollector(prometheus.NewRegistry(), "test")
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Store:  config.StoreConfig{Kind: config.StoreMemory},
	}
	searchUC := usecase.NewProximitySearchUseCase(memory.NewPointRepository(), geo.NewIndexer(geo.DefaultPrecision),
		usecase.SearchOptions{MinGeneralCategories: 3}, collector, zap.NewNop())
	h := handler.NewEcopointHandler(searchUC, usecase.NewResponseFormatter(), zap.NewNop())

	return delivery.NewServer(cfg, zap.NewNop(), collector, h)
}

func TestServer_Health(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"data": {"status": "healthy", "store": "memory"}}`, string(body))
}

func TestServer_MetricsExposeRequests(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/api/v1/health",status="200"} 1`)
}

func TestServer_UnknownRoute(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
}
