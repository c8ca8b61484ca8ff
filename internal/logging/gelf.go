package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// GelfSink ships JSON log records to a Graylog input over UDP.
type GelfSink struct {
	writer  *gelf.Writer
	handler slog.Handler
}

// NewGelfSink dials addr ("host:port") and returns a sink whose handler can be passed
// to SlogManager.Setup as an extra handler.
func NewGelfSink(addr, level string) (*GelfSink, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF writer: %w", err)
	}
	w.Facility = instrumentationName
	return &GelfSink{
		writer:  w,
		handler: slog.NewJSONHandler(w, HandlerOptions(level)),
	}, nil
}

// Handler returns the slog handler writing to Graylog.
func (s *GelfSink) Handler() slog.Handler {
	return s.handler
}

// Close closes the underlying connection.
func (s *GelfSink) Close() error {
	return s.writer.Close()
}
