// ABOUTME: Tests for logger setup and level parsing.
// ABOUTME: Restores the global logrus state after each test.
package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	level := logrus.GetLevel()
	out := logrus.StandardLogger().Out
	formatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(level)
		logrus.SetOutput(out)
		logrus.SetFormatter(formatter)
	})
}

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{" warn ", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"trace", logrus.TraceLevel},
		{"fatal", logrus.FatalLevel},
		{"", logrus.WarnLevel},
		{"loud", logrus.WarnLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetLevel(tt.in), tt.in)
	}
}

func TestSetupStderr(t *testing.T) {
	restoreLogger(t)

	Setup(LoggerSetupParams{LogLevel: "debug", LogFormatJSON: true})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Equal(t, os.Stderr, logrus.StandardLogger().Out)
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}

func TestSetupFile(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "journey")
	Setup(LoggerSetupParams{LogFileName: path, LogLevel: "info"})
	logrus.Info("hello file")

	raw, err := os.ReadFile(path + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hello file")
}
