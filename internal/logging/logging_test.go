package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Console: true}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger := newLogger(LogConfig{Level: "info", File: true, FilePath: path, MaxSize: 1}, nil)

	LogImport(WithDocument(logger, "a.pdf"), "a.pdf", "scalper", 3)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"imported":3`)
	assert.Contains(t, string(data), `"strategy":"scalper"`)
}

func TestLogParse(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogParse(WithMode(logger, "summary"), "a.pdf", 5, 5, time.Millisecond, nil)
	assert.Contains(t, buf.String(), `"mode":"summary"`)
	assert.Contains(t, buf.String(), "Report parsed")

	buf.Reset()
	LogParse(logger, "b.pdf", 0, 0, time.Millisecond, errors.New("broken xref"))
	assert.Contains(t, buf.String(), "broken xref")
	assert.Contains(t, buf.String(), "Report parse failed")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), WithOperation(zerolog.New(&buf), "import"))

	logger := FromContext(ctx)
	logger.Info().Msg("x")
	assert.Contains(t, buf.String(), `"operation":"import"`)

	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTrace(zerolog.New(&buf), "4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	logger.Info().Msg("traced")

	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, buf.String(), `"span_id":"00f067aa0ba902b7"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}
