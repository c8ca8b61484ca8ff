package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/hydrocamel/sonarscan/internal/dispatcher"

// initMetrics registers the queue depth gauge and the processed and dropped
// counters on the global meter. Without a configured provider they are no-ops.
func (d *Dispatcher) initMetrics() error {
	m := otel.Meter(instrumentationName)

	var err error
	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Events waiting in a command's buffer"),
	)
	if err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}
	if _, err = m.RegisterCallback(d.observeQueues, d.queueSize); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Frames and discoveries handled"),
	)
	if err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Events rejected by a full non-blocking buffer"),
	)
	if err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	return nil
}

// observeQueues reports one gauge sample per buffered command.
func (d *Dispatcher) observeQueues(_ context.Context, o metric.Observer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for cmd, buf := range d.buffers {
		o.ObserveInt64(d.queueSize, int64(len(buf)),
			metric.WithAttributes(attribute.String("command", cmd)))
	}
	return nil
}
