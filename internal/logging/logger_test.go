package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type nopSyncer struct{ *bytes.Buffer }

func (nopSyncer) Sync() error { return nil }

func TestNewLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewLogger(Config{Format: "json", Level: "info", Output: nopSyncer{buf}})
	require.NoError(t, err)

	logger.Info("build started", zapcore.Field{Key: "n_points", Integer: 100, Type: zapcore.Int64Type})
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "build started")
	assert.Contains(t, buf.String(), "n_points")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(Config{Format: "json", Level: "bogus"})
	assert.Error(t, err)
}

func TestNewLogger_DefaultsOutputToStdout(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestDiscardLogger_NeverPanics(t *testing.T) {
	logger := DiscardLogger()
	assert.NotPanics(t, func() {
		logger.Info("ignored")
	})
}

func TestWorkerLogger_Fields(t *testing.T) {
	wl := NewWorkerLogger("build", 3)
	assert.NotPanics(t, func() {
		wl.Info("block complete", map[string]any{"accepted": 12})
		wl.Warn("slow block", nil)
	})
}
