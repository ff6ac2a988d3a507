package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/logger"
)

func TestInitRejectsBadConfig(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         logger.Log
		expectedErr error
	}{
		{
			name: "empty service name",
			cfg: logger.Log{
				LogLevel: "info",
				AppName:  "test",
			},
			expectedErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name: "empty app name",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
			},
			expectedErr: logger.ErrAppNameIsEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := logger.Init(tc.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := logger.Init(logger.Log{
		LogLevel:    "loud",
		AppName:     "test",
		ServiceName: "test",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestInitAcceptsConsoleConfig(t *testing.T) {
	err := logger.Init(logger.Log{
		LogLevel:    "info",
		AppName:     "test",
		ServiceName: "test",
		Console:     logger.Console{Enabled: true},
	})
	require.NoError(t, err)
}

func TestLevelWriterSplitsByLevel(t *testing.T) {
	// earlier Init calls may have raised the global level
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var infoBuf, warnBuf, errBuf, traceBuf bytes.Buffer

	lw := &logger.LevelWriter{
		InfoWriter:  &infoBuf,
		WarnWriter:  &warnBuf,
		ErrorWriter: &errBuf,
		TraceWriter: &traceBuf,
	}

	log := zerolog.New(lw)

	log.Info().Msg("info line")
	log.Warn().Msg("warn line")
	log.Error().Msg("error line")
	log.Trace().Msg("trace line")
	log.Debug().Msg("debug line")

	assert.Contains(t, infoBuf.String(), "info line")
	assert.Contains(t, infoBuf.String(), "debug line")
	assert.Contains(t, warnBuf.String(), "warn line")
	assert.Contains(t, errBuf.String(), "error line")
	assert.Contains(t, traceBuf.String(), "trace line")

	// each line must be valid JSON
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(warnBuf.Bytes(), &parsed))
	assert.Equal(t, "warn line", parsed["message"])
}
