package scan

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/hydrocamel/sonarscan/internal/scan"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	steps      metric.Int64Counter
	discovered metric.Int64Counter
	warnings   metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	m := meter()
	var (
		in  instruments
		err error
	)

	in.steps, err = m.Int64Counter(
		"scan.steps",
		metric.WithDescription("Total scan steps taken"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	in.discovered, err = m.Int64Counter(
		"scan.targets.discovered",
		metric.WithDescription("Total distinct targets discovered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discovered counter: %w", err)
	}

	in.warnings, err = m.Int64Counter(
		"scan.geometry.warnings",
		metric.WithDescription("Steps whose sonar footprint was degenerate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating warnings counter: %w", err)
	}

	return &in, nil
}
