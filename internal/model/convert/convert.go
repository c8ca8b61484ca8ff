// Package convert maps between the core domain structs and the GORM models.
package convert

import (
	"encoding/json"

	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/hydrocamel/sonarscan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToPosition converts a grid point (X = col, Y = row) to a core.Position
func pointToPosition(p geom.Point) core.Position {
	xy, ok := p.XY()
	if !ok {
		return core.Position{}
	}
	return core.Position{Row: xy.Y, Col: xy.X}
}

// polygonToFootprint reads the first three ring vertices back as apex, B, C.
func polygonToFootprint(p geom.Polygon) [3]core.Position {
	var out [3]core.Position
	seq := p.ExteriorRing().Coordinates()
	for i := 0; i < 3 && i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		out[i] = core.Position{Row: xy.Y, Col: xy.X}
	}
	return out
}

// MissionToCore converts a GORM Mission to a core.Mission.
func MissionToCore(m model.Mission) core.Mission {
	var course []core.Segment
	if len(m.Course) > 0 {
		_ = json.Unmarshal(m.Course, &course)
	}
	return core.Mission{
		ID:             m.ID,
		UUID:           m.UUID,
		MissionName:    m.MissionName,
		Tag:            m.Tag,
		StartTime:      m.StartTime,
		SonarRange:     m.SonarRange,
		SonarHalfAngle: m.SonarHalfAngle,
		Rows:           m.Rows,
		Cols:           m.Cols,
		Start:          pointToPosition(m.Start),
		Course:         course,
		TargetCount:    m.TargetCount,
	}
}

// FrameToCore converts a GORM Frame to a core.Frame.
func FrameToCore(f model.Frame) core.Frame {
	var fov []core.Cell
	if len(f.FOV) > 0 {
		_ = json.Unmarshal(f.FOV, &fov)
	}
	return core.Frame{
		MissionID:    f.MissionID,
		Time:         f.Time,
		CaptureFrame: f.CaptureFrame,
		Position:     pointToPosition(f.Position),
		Heading:      f.Heading,
		Footprint:    polygonToFootprint(f.Footprint),
		FOV:          fov,
		Discovered:   f.Discovered,
		Degenerate:   f.Degenerate,
	}
}

// DiscoveryToCore converts a GORM Discovery to a core.Discovery.
func DiscoveryToCore(d model.Discovery) core.Discovery {
	out := core.Discovery{
		MissionID:    d.MissionID,
		Time:         d.Time,
		CaptureFrame: d.CaptureFrame,
		Cell:         core.Cell{Row: d.Row, Col: d.Col},
	}
	if xy, ok := d.World.XY(); ok {
		out.World = &core.WorldPosition{X: xy.X, Y: xy.Y}
	}
	return out
}
