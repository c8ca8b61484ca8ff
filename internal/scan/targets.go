package scan

import (
	"cmp"
	"context"
	"slices"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// checkTargets appends every marked, not yet discovered cell of the current field
// of view to the discovered list.
func (e *Engine) checkTargets() {
	e.newTargets = e.newTargets[:0]
	for _, c := range e.fov.Cells() {
		if e.cfg.Targets[c.Row][c.Col] != 1 {
			continue
		}
		if _, ok := e.seen[c]; ok {
			continue
		}
		e.seen[c] = struct{}{}
		e.discovered = append(e.discovered, core.Discovery{
			CaptureFrame: uint(e.step),
			Cell:         c,
		})
		e.newTargets = append(e.newTargets, c)
		e.log.Info("target discovered", "step", e.step, "row", c.Row, "col", c.Col)
	}
	if n := len(e.newTargets); n > 0 {
		e.metrics.discovered.Add(context.Background(), int64(n), e.attrs)
	}
}

// Targets returns the discovered targets ordered by column, then row.
func (e *Engine) Targets() []core.Cell {
	cells := make([]core.Cell, len(e.discovered))
	for i, d := range e.discovered {
		cells[i] = d.Cell
	}
	SortTargets(cells)
	return cells
}

// Discoveries returns the discovery records in the order they were made.
func (e *Engine) Discoveries() []core.Discovery {
	return slices.Clone(e.discovered)
}

// SortTargets orders cells by column, then row, in place.
func SortTargets(cells []core.Cell) {
	slices.SortStableFunc(cells, func(a, b core.Cell) int {
		if c := cmp.Compare(a.Col, b.Col); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})
}
