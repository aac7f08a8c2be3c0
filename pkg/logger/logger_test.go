package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGlobalLoggerWritesThroughSet(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Debug("hidden")
	Warn("email send failed", zap.String("to", "u1@example.com"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "email send failed", entries[0].Message)
	assert.Equal(t, "u1@example.com", entries[0].ContextMap()["to"])
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init("loud", false))
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, L().Core().Enabled(zapcore.DebugLevel))
}
