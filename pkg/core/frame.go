// pkg/core/frame.go
package core

import "time"

// Frame is the recorded state of the scan after one step.
// CaptureFrame 0 is the state right after construction, before any motion.
type Frame struct {
	MissionID    uint
	Time         time.Time
	CaptureFrame uint
	Position     Position
	Heading      float64
	Footprint    [3]Position // apex, then the two far vertices
	FOV          []Cell
	Discovered   int
	Degenerate   bool
}

// Discovery records the step on which a target cell first entered the field of view.
type Discovery struct {
	MissionID    uint
	Time         time.Time
	CaptureFrame uint
	Cell         Cell

	// World is set when the grid is georeferenced (EPSG:3857 X/Y).
	World *WorldPosition
}

// WorldPosition is a projected coordinate.
type WorldPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
