package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfig(t *testing.T) {
	prod := loggerConfig("production")
	assert.Equal(t, "json", prod.Encoding)
	assert.False(t, prod.Level.Enabled(zapcore.DebugLevel))
	assert.Equal(t, "production", prod.InitialFields["env"])

	dev := loggerConfig("development")
	assert.Equal(t, "console", dev.Encoding)
	assert.True(t, dev.Level.Enabled(zapcore.DebugLevel))
	assert.Equal(t, []string{"stdout"}, dev.OutputPaths)
}

func TestNewLoggerLevelOverride(t *testing.T) {
	logger := NewLogger("production", "debug")
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger = NewLogger("development", "warn")
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	assert.Panics(t, func() { NewLogger("development", "loud") })
}
