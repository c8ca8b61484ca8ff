package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/hydrocamel/sonarscan/internal/queue"
	"github.com/hydrocamel/sonarscan/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// leg is a queued course segment with its remaining time units.
type leg struct {
	core.Segment
	remaining int
}

// Engine owns the vehicle pose, the sonar footprint, the motion queue and the
// discovered-target list.
type Engine struct {
	cfg         Config
	strategy    Strategy
	log         *slog.Logger
	renderer    Renderer
	missionName string
	metrics     *instruments
	attrs       metric.MeasurementOption

	tri     Triangle
	heading float64
	course  *queue.Queue[leg]
	fov     FOV
	step    int

	discovered []core.Discovery
	seen       map[core.Cell]struct{}
	newTargets []core.Cell
	degenerate bool
}

var _ core.Vehicle = (*Engine)(nil)

// New validates cfg, places the footprint at the start position with heading 0,
// computes the initial field of view and runs target detection once.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		log:    slog.New(slog.DiscardHandler),
		course: queue.New[leg](),
		seen:   make(map[core.Cell]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	in, err := newInstruments()
	if err != nil {
		return nil, fmt.Errorf("scan metrics: %w", err)
	}
	e.metrics = in
	e.attrs = metric.WithAttributes(attribute.String("mission", e.missionName))

	for _, seg := range cfg.Course {
		e.course.Push(leg{Segment: seg, remaining: seg.Duration})
	}

	e.tri = NewTriangle(cfg.Start, cfg.Range, cfg.HalfAngle, 0)
	e.scan()
	e.checkTargets()

	e.log.Debug("scan engine ready",
		"range", cfg.Range,
		"halfAngle", cfg.HalfAngle,
		"rows", cfg.Rows,
		"cols", cfg.Cols,
		"segments", len(cfg.Course),
		"strategy", e.strategy.String(),
	)
	return e, nil
}

// Step advances the scan by one time unit: move (and turn on the first tick of a
// segment), recompute the field of view, detect targets and consume one unit of the
// front segment. With an empty course only the field of view and detection run.
//
// The returned error is a *GeometryWarning when the footprint was degenerate on this
// step; it is informational and the engine stays usable.
func (e *Engine) Step() error {
	front, moving := e.course.Front()
	if moving && front.remaining > 0 {
		e.tri = e.tri.Translate(front.Velocity)
		if front.remaining == front.Duration {
			e.turnTo(headingOf(front.Velocity))
		}
	}

	e.step++
	warning := e.scan()
	e.checkTargets()

	if moving {
		front.remaining--
		if front.remaining <= 0 {
			e.course.Pop()
		}
	}

	e.metrics.steps.Add(context.Background(), 1, e.attrs)
	e.log.Debug("scan step",
		"step", e.step,
		"row", e.tri.A.Row,
		"col", e.tri.A.Col,
		"heading", e.heading,
		"fov", e.fov.Len(),
		"discovered", len(e.discovered),
	)

	if warning != nil {
		return warning
	}
	return nil
}

// Run steps and renders until the course is exhausted and returns the number of steps
// taken, which equals the total queued duration.
func (e *Engine) Run() int {
	n := 0
	for !e.course.Empty() {
		// Degenerate footprints are logged by scan and do not stop the run.
		_ = e.Step()
		n++
		if err := e.Render(); err != nil {
			e.log.Warn("render failed", "step", e.step, "error", err)
		}
	}
	e.log.Info("course complete", "steps", n, "targets", len(e.discovered))
	return n
}

// Render hands the current snapshot to the configured renderer, if any.
func (e *Engine) Render() error {
	if e.renderer == nil {
		return nil
	}
	return e.renderer.Render(e.Snapshot())
}

// SetCourse appends segments to the back of the course. The in-progress segment is
// not interrupted. On a validation error nothing is appended.
func (e *Engine) SetCourse(segments ...core.Segment) error {
	if err := validateCourse(segments); err != nil {
		return err
	}
	for _, seg := range segments {
		e.course.Push(leg{Segment: seg, remaining: seg.Duration})
	}
	return nil
}

// turnTo sets the new heading and rotates the far vertices forward by the wrapped
// difference, so the rotation is always within [0, 360).
func (e *Engine) turnTo(heading float64) {
	delta := normalizeDegrees(heading - e.heading)
	e.tri = e.tri.RotateAboutApex(delta)
	e.heading = heading
}

// scan recomputes the field of view from scratch.
func (e *Engine) scan() *GeometryWarning {
	fov, err := ComputeFOV(e.tri, e.cfg.Rows, e.cfg.Cols, e.strategy)
	e.fov = fov
	e.degenerate = false

	var gw *GeometryWarning
	if errors.As(err, &gw) {
		gw.Step = e.step
		e.degenerate = true
		e.metrics.warnings.Add(context.Background(), 1, e.attrs)
		e.log.Warn("sonar footprint degenerate, field of view empty", "step", e.step, "error", gw)
		return gw
	}
	return nil
}

// headingOf returns the direction of v in degrees within [0, 360).
func headingOf(v core.Velocity) float64 {
	return normalizeDegrees(math.Atan2(v.DRow, v.DCol) * 180 / math.Pi)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	if d == 0 {
		return 0
	}
	return d
}

// Position returns the vehicle (apex) position.
func (e *Engine) Position() core.Position {
	return e.tri.A
}

// Heading returns the vehicle heading in degrees within [0, 360).
func (e *Engine) Heading() float64 {
	return e.heading
}

// Triangle returns the current sonar footprint.
func (e *Engine) Triangle() Triangle {
	return e.tri
}

// FOV returns a copy of the current field of view.
func (e *Engine) FOV() FOV {
	return e.fov.Clone()
}

// Steps returns the number of steps taken; construction is step 0.
func (e *Engine) Steps() int {
	return e.step
}

// Pending returns the number of time units left on the course.
func (e *Engine) Pending() int {
	total := 0
	e.course.Each(func(l leg) bool {
		total += l.remaining
		return true
	})
	return total
}

// Done reports whether the course is exhausted.
func (e *Engine) Done() bool {
	return e.course.Empty()
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Snapshot returns a copy of the state renderers need.
func (e *Engine) Snapshot() Snapshot {
	targets := make([]core.Cell, len(e.discovered))
	for i, d := range e.discovered {
		targets[i] = d.Cell
	}
	return Snapshot{
		Step:       e.step,
		Rows:       e.cfg.Rows,
		Cols:       e.cfg.Cols,
		Position:   e.tri.A,
		Heading:    e.heading,
		Triangle:   e.tri,
		FOV:        e.fov.Cells(),
		Targets:    targets,
		NewTargets: slices.Clone(e.newTargets),
		Degenerate: e.degenerate,
	}
}
