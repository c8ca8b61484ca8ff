package scan

import (
	"log/slog"
	"math"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// Config holds everything the engine is constructed from.
type Config struct {
	Range     float64 // sonar range in grid units
	HalfAngle float64 // degrees, 0..90
	Rows      int
	Cols      int
	Start     core.Position
	Course    []core.Segment
	Targets   [][]uint8 // Rows x Cols, 1 marks a target
}

// Validate checks the configuration and returns a *ConfigurationError for the first
// violation found.
func (c Config) Validate() error {
	if !(c.Range > 0) || math.IsInf(c.Range, 0) {
		return configErrorf("range", "must be a positive finite number, got %v", c.Range)
	}
	if math.IsNaN(c.HalfAngle) || c.HalfAngle < 0 || c.HalfAngle > 90 {
		return configErrorf("halfAngle", "must be within [0, 90] degrees, got %v", c.HalfAngle)
	}
	if c.Rows <= 0 || c.Cols <= 0 {
		return configErrorf("mapShape", "must be positive, got %dx%d", c.Rows, c.Cols)
	}
	if !finite(c.Start.Row) || !finite(c.Start.Col) ||
		c.Start.Row < 0 || c.Start.Row >= float64(c.Rows) ||
		c.Start.Col < 0 || c.Start.Col >= float64(c.Cols) {
		return configErrorf("start", "position %+v is outside the %dx%d map", c.Start, c.Rows, c.Cols)
	}
	if err := validateCourse(c.Course); err != nil {
		return err
	}
	if len(c.Targets) != c.Rows {
		return configErrorf("targets", "expected %d rows, got %d", c.Rows, len(c.Targets))
	}
	for r, row := range c.Targets {
		if len(row) != c.Cols {
			return configErrorf("targets", "row %d: expected %d columns, got %d", r, c.Cols, len(row))
		}
		for col, v := range row {
			if v > 1 {
				return configErrorf("targets", "cell (%d,%d): expected 0 or 1, got %d", r, col, v)
			}
		}
	}
	return nil
}

// TargetCount returns the number of marked cells in the target map.
func (c Config) TargetCount() int {
	n := 0
	for _, row := range c.Targets {
		for _, v := range row {
			if v == 1 {
				n++
			}
		}
	}
	return n
}

func validateCourse(course []core.Segment) error {
	for i, seg := range course {
		if seg.Duration <= 0 {
			return configErrorf("course", "segment %d: duration must be positive, got %d", i, seg.Duration)
		}
		if !finite(seg.Velocity.DRow) || !finite(seg.Velocity.DCol) {
			return configErrorf("course", "segment %d: velocity %+v is not finite", i, seg.Velocity)
		}
	}
	return nil
}

// ParallelCourse zips a velocity list and a duration list into segments.
func ParallelCourse(velocities []core.Velocity, durations []int) ([]core.Segment, error) {
	if len(velocities) != len(durations) {
		return nil, configErrorf("course", "%d velocities but %d durations", len(velocities), len(durations))
	}
	course := make([]core.Segment, len(velocities))
	for i := range velocities {
		course[i] = core.Segment{Velocity: velocities[i], Duration: durations[i]}
	}
	if err := validateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRenderer sets the collaborator invoked after every step of Run.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithScanStrategy selects how candidate cells are enumerated.
func WithScanStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithMissionName tags the engine's metrics with a mission attribute.
func WithMissionName(name string) Option {
	return func(e *Engine) {
		e.missionName = name
	}
}
