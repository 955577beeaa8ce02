package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warning": LevelWarn, "warn": LevelWarn, " error ": LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug)

	l.With(String("system", "physics")).Named("world").Warn("tick aborted",
		Int("frame", 3),
		Uint64("steps", 9),
		Float64("delta", 0.02),
		Duration("took", time.Millisecond),
		Bool("fatal", true),
		Error(errors.New("bad friction")),
		Error(nil),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "world", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "physics", ctx["system"])
	assert.Equal(t, int64(3), ctx["frame"])
	assert.Equal(t, uint64(9), ctx["steps"])
	assert.Equal(t, "bad friction", ctx["error"])
	assert.Equal(t, true, ctx["fatal"])
}

func TestLogger_Enabled(t *testing.T) {
	l := New(LevelWarn)
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))
	l.SetLevel(LevelDebug)
	assert.True(t, l.Enabled(LevelDebug))

	assert.False(t, NewNop().Enabled(LevelError))
}
