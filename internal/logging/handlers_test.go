package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingHandler accepts every record and fails to write it.
type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink unavailable")
}

func textHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

func stepProvider(step *int) ContextProvider {
	return func() []slog.Attr {
		return []slog.Attr{slog.String("mission", "Harbour"), slog.Int("step", *step)}
	}
}

func TestMultiHandler(t *testing.T) {
	var file, console bytes.Buffer
	m := NewMultiHandler(nil, textHandler(&file, slog.LevelDebug), nil, textHandler(&console, slog.LevelInfo))
	require.Len(t, m, 2)

	logger := slog.New(m).With("component", "engine").WithGroup("scan")
	logger.Debug("scan step", "fov", 9)
	logger.Info("course complete", "steps", 8)

	assert.Contains(t, file.String(), "component=engine")
	assert.Contains(t, file.String(), "scan.fov=9")
	assert.NotContains(t, console.String(), "scan step")
	assert.Contains(t, console.String(), "scan.steps=8")

	assert.True(t, m.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, m, m.WithGroup(""))
}

func TestMultiHandler_FailingSink(t *testing.T) {
	var file bytes.Buffer
	m := NewMultiHandler(failingHandler{}, textHandler(&file, slog.LevelInfo), failingHandler{})

	err := m.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "frame recorded", 0))

	assert.EqualError(t, err, "sink unavailable\nsink unavailable")
	assert.Contains(t, file.String(), "frame recorded")
}

func TestContextHandler_AddsState(t *testing.T) {
	var buf bytes.Buffer
	step := 4
	logger := slog.New(NewContextHandler(textHandler(&buf, slog.LevelInfo), stepProvider(&step)))

	logger.Info("target recorded")
	step = 5
	logger.Info("target recorded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "mission=Harbour step=4")
	assert.Contains(t, lines[1], "step=5")
}

func TestContextHandler_RecordKeysWin(t *testing.T) {
	var buf bytes.Buffer
	step := 4
	logger := slog.New(NewContextHandler(textHandler(&buf, slog.LevelInfo), stepProvider(&step)))

	logger.Info("scan step", "step", 9)
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "step=9"))
	assert.NotContains(t, out, "step=4")
	assert.Contains(t, out, "mission=Harbour")

	buf.Reset()
	logger.With("mission", "replay").Info("scan step")
	out = buf.String()
	assert.Equal(t, 1, strings.Count(out, "mission="))
	assert.Contains(t, out, "mission=replay")
	assert.Contains(t, out, "step=4")
}

func TestContextHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	step := 2
	h := NewContextHandler(textHandler(&buf, slog.LevelInfo), stepProvider(&step))

	slog.New(h).With("step", 1).WithGroup("scan").Info("grouped", "fov", 9)

	out := buf.String()
	assert.Contains(t, out, "step=1")
	assert.Contains(t, out, "scan.fov=9")
	assert.Contains(t, out, "scan.step=2")
	assert.Equal(t, h, h.WithGroup(""))
}
