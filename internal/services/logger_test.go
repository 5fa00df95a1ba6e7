package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestZapLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core), "courier")

	logger.Info("code dispatched", "leg_id", "leg-1", "sent", true)
	logger.Warn("retrying")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "code dispatched", entries[0].Message)
		assert.Equal(t, "courier", fields["service"])
		assert.Equal(t, "leg-1", fields["leg_id"])
		assert.Equal(t, true, fields["sent"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	}
}

func TestNewLoggerSilentUnderTest(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("courier", "development", "debug").(*NoOpLogger)
	assert.True(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(""))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+5511****", MaskPhone("+5511987654321"))
	assert.Equal(t, "****", MaskPhone("123"))
}
