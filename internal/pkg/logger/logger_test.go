package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		enabled zapcore.Level
	}{
		{name: "info json", level: "info", format: "json", enabled: zapcore.InfoLevel},
		{name: "warn console", level: "warn", format: "console", enabled: zapcore.WarnLevel},
		{name: "debug", level: "debug", format: "json", enabled: zapcore.DebugLevel},
		{name: "unknown level falls back to info", level: "loud", format: "", enabled: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			require.NoError(t, err)
			require.NotNil(t, log)

			assert.True(t, log.Core().Enabled(tt.enabled))
			if tt.enabled > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.enabled-1))
			}
		})
	}
}
