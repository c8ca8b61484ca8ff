package scan

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// FOV is the set of grid cells inside the sonar footprint at one step.
type FOV map[core.Cell]struct{}

// Contains reports whether c is in the field of view.
func (f FOV) Contains(c core.Cell) bool {
	_, ok := f[c]
	return ok
}

// Len returns the number of cells in the field of view.
func (f FOV) Len() int {
	return len(f)
}

// Cells returns the cells in row-major order.
func (f FOV) Cells() []core.Cell {
	cells := slices.Collect(maps.Keys(f))
	slices.SortFunc(cells, compareRowMajor)
	return cells
}

// Clone returns an independent copy.
func (f FOV) Clone() FOV {
	if f == nil {
		return FOV{}
	}
	return maps.Clone(f)
}

func compareRowMajor(a, b core.Cell) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Strategy selects which cells ComputeFOV tests against the triangle.
type Strategy int

const (
	// BoundingBox tests only cells within the triangle's bounding box, clamped to the map.
	BoundingBox Strategy = iota
	// FullGrid tests every cell of the map.
	FullGrid
)

func (s Strategy) String() string {
	switch s {
	case BoundingBox:
		return "bbox"
	case FullGrid:
		return "full"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "bbox" (or "" / "boundingbox") and "full" (or "fullgrid").
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bbox", "boundingbox":
		return BoundingBox, nil
	case "full", "fullgrid":
		return FullGrid, nil
	default:
		return 0, configErrorf("strategy", "unknown scan strategy %q", s)
	}
}

// ComputeFOV returns every cell of a rows x cols map inside t.
// A degenerate triangle yields an empty set and a *GeometryWarning.
func ComputeFOV(t Triangle, rows, cols int, s Strategy) (FOV, error) {
	fov := FOV{}
	if t.Degenerate() {
		return fov, &GeometryWarning{Triangle: t}
	}

	r0, r1, c0, c1 := 0, rows-1, 0, cols-1
	if s == BoundingBox {
		minRow, maxRow, minCol, maxCol := t.Bounds()
		r0 = max(r0, int(math.Floor(minRow)))
		r1 = min(r1, int(math.Ceil(maxRow)))
		c0 = max(c0, int(math.Floor(minCol)))
		c1 = min(c1, int(math.Ceil(maxCol)))
	}

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if t.Contains(core.Position{Row: float64(row), Col: float64(col)}) {
				fov[core.Cell{Row: row, Col: col}] = struct{}{}
			}
		}
	}
	return fov, nil
}
