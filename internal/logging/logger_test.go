package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		logger, err := New(in, "json")
		require.NoError(t, err)
		require.True(t, logger.Core().Enabled(want), "level %s", in)
		if want > zapcore.DebugLevel {
			require.False(t, logger.Core().Enabled(want-1), "level %s", in)
		}
	}
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := New("info", "console")
	require.NoError(t, err)
	require.NotNil(t, logger)
}
