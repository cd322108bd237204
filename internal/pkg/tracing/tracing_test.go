package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_EnabledExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		Enabled:     true,
		ServiceName: "ecopoint-test",
		SampleRatio: 1,
		Writer:      &buf,
	}, zap.NewNop())
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "ecopoint.find_nearest")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	Shutdown(shutdown, zap.NewNop())
	assert.Contains(t, buf.String(), "ecopoint.find_nearest")

	// вернуть noop-провайдер для остальных тестов
	_, err = Init(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
}
