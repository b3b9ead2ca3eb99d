package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/exascience/parmap/logging"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Config{Level: "warn", Format: logging.FormatJSON})
	logger.Info().Msg("hidden")
	component := logging.Component(logger, "bench")
	component.Warn().Int("workers", 4).Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"component":"bench"`)
	assert.Contains(t, out, `"workers":4`)
	assert.Contains(t, out, `"time":`)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Config{Level: "debug", Format: logging.FormatConsole})
	logger.Debug().Msg("starting")
	assert.Contains(t, buf.String(), "starting")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Config{Level: "loud", Format: logging.FormatJSON})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = logging.New(&buf, logging.DefaultConfig())
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Config{Level: "info", Format: logging.FormatJSON})
	ctx := logger.WithContext(context.Background())
	logging.FromContext(ctx).Info().Msg("via context")
	assert.Contains(t, buf.String(), "via context")

	assert.NotPanics(t, func() {
		logging.FromContext(context.Background()).Info().Msg("dropped")
	})
}
