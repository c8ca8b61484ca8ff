package scan

import "github.com/hydrocamel/sonarscan/pkg/core"

// Snapshot is a read-only copy of the engine state handed to renderers.
type Snapshot struct {
	Step     int
	Rows     int
	Cols     int
	Position core.Position
	Heading  float64
	Triangle Triangle

	// FOV is in row-major order.
	FOV []core.Cell
	// Targets holds every discovered target in discovery order.
	Targets []core.Cell
	// NewTargets holds the targets discovered on this step.
	NewTargets []core.Cell

	Degenerate bool
}

// Renderer consumes engine snapshots. The engine does no rendering itself.
type Renderer interface {
	Render(Snapshot) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot) error

// Render calls f(s).
func (f RendererFunc) Render(s Snapshot) error {
	return f(s)
}
