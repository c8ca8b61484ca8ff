package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.Meter("test"))
}

func TestNew_EnabledWithoutExporter(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "sonarscan"})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "sonarscan",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	logger := otelslog.NewLogger("test", otelslog.WithLoggerProvider(p.LoggerProvider()))
	logger.Info("target discovered", "row", 14, "col", 7)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "target discovered")
	assert.Contains(t, buf.String(), "sonarscan")

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_OTLPEndpoint(t *testing.T) {
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "sonarscan",
		BatchTimeout: time.Second,
		Endpoint:     "localhost:4318",
		Insecure:     true,
	})
	require.NoError(t, err)
	assert.NotNil(t, p.LoggerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = p.Shutdown(ctx)
}
