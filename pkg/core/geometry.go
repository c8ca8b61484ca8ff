// pkg/core/geometry.go
package core

import "fmt"

// Cell is an integer grid cell addressed by row then column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Position is a continuous grid position. Row grows downward, Col grows to the right.
type Position struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Cell truncates the position toward zero.
func (p Position) Cell() Cell {
	return Cell{Row: int(p.Row), Col: int(p.Col)}
}

// Add returns p translated by v.
func (p Position) Add(v Velocity) Position {
	return Position{Row: p.Row + v.DRow, Col: p.Col + v.DCol}
}

// Velocity is a per-time-unit displacement in grid units.
type Velocity struct {
	DRow float64 `json:"dRow"`
	DCol float64 `json:"dCol"`
}

// Segment is one leg of a course: a constant velocity held for Duration whole time units.
type Segment struct {
	Velocity Velocity `json:"velocity"`
	Duration int      `json:"duration"`
}
