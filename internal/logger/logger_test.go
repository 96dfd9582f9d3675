package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug", false))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning", false))
	assert.Equal(t, zapcore.DebugLevel, levelFromString("", true))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("", false))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("verbose", true))
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodhub.log")

	lg, err := New(Config{Level: "info", File: path})
	require.NoError(t, err)

	lg.Info("hello from test")
	_ = lg.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}
