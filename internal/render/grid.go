// Package render turns scan snapshots into something a person can look at: a coded
// display grid, plain text frames and PNG heat maps.
package render

import (
	"github.com/hydrocamel/sonarscan/internal/scan"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// Display grid codes.
const (
	Empty uint8 = iota
	InFOV
	TargetInFOV
	TargetOutside
	Vehicle
)

// Grid is a rows x cols raster of display codes. It is rebuilt for every frame.
type Grid [][]uint8

// BuildGrid paints a snapshot: field of view first, then discovered targets, then the
// vehicle on top.
func BuildGrid(s scan.Snapshot) Grid {
	g := make(Grid, s.Rows)
	for r := range g {
		g[r] = make([]uint8, s.Cols)
	}

	for _, c := range s.FOV {
		g.set(c, InFOV)
	}
	for _, c := range s.Targets {
		if g.At(c) == InFOV {
			g.set(c, TargetInFOV)
		} else {
			g.set(c, TargetOutside)
		}
	}
	if s.Position.Row >= 0 && s.Position.Col >= 0 {
		g.set(s.Position.Cell(), Vehicle)
	}
	return g
}

func (g Grid) set(c core.Cell, v uint8) {
	if c.Row < 0 || c.Row >= len(g) || c.Col < 0 || c.Col >= len(g[c.Row]) {
		return
	}
	g[c.Row][c.Col] = v
}

// At returns the code at c, or Empty outside the grid.
func (g Grid) At(c core.Cell) uint8 {
	if c.Row < 0 || c.Row >= len(g) || c.Col < 0 || c.Col >= len(g[c.Row]) {
		return Empty
	}
	return g[c.Row][c.Col]
}

// Count returns how many cells carry code v.
func (g Grid) Count(v uint8) int {
	n := 0
	for _, row := range g {
		for _, x := range row {
			if x == v {
				n++
			}
		}
	}
	return n
}
