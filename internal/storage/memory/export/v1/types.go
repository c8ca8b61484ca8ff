// Package v1 contains the v1 export format for recorded surveys.
package v1

// Version is written into every export so readers can pick a decoder.
const Version = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion string   `json:"formatVersion"`
	MissionName   string   `json:"missionName"`
	MissionUUID   string   `json:"missionUuid"`
	Tag           string   `json:"tag"`
	StartTime     string   `json:"startTime"`
	Sensor        Sensor   `json:"sensor"`
	Map           Map      `json:"map"`
	Start         Point    `json:"start"`
	Course        []Leg    `json:"course"`
	EndFrame      uint     `json:"endFrame"`
	TargetCount   int      `json:"targetCount"`
	Frames        []Frame  `json:"frames"`
	Targets       []Target `json:"targets"`
}

// Sensor holds the sonar parameters.
type Sensor struct {
	Range     float64 `json:"range"`
	HalfAngle float64 `json:"halfAngle"`
}

// Map is the grid size.
type Map struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Point is a continuous [row, col] grid position.
type Point [2]float64

// Cell is an integer [row, col] grid cell.
type Cell [2]int

// Leg is one course segment: [dRow, dCol] held for Duration time units.
type Leg struct {
	Velocity Point `json:"velocity"`
	Duration int   `json:"duration"`
}

// Frame is the scan state after one step
type Frame struct {
	Frame      uint     `json:"frame"`
	Time       string   `json:"time,omitempty"`
	Position   Point    `json:"position"`
	Heading    float64  `json:"heading"`
	Footprint  [3]Point `json:"footprint"`
	FOV        []Cell   `json:"fov"`
	Discovered int      `json:"discovered"`
	Degenerate bool     `json:"degenerate,omitempty"`
}

// Target is a discovered target cell
type Target struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	CaptureFrame uint   `json:"captureFrame"`
	World        *Point `json:"world,omitempty"` // EPSG:3857 [x, y]
}
