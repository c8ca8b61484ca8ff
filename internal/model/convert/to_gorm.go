package convert

import (
	"encoding/json"

	"github.com/hydrocamel/sonarscan/internal/geo"
	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/hydrocamel/sonarscan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// toJSON marshals v for a jsonb column, falling back to an empty array.
func toJSON[T any](v []T) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToMission converts a core.Mission to a GORM model.Mission.
// The ID is left to the database.
func CoreToMission(m core.Mission) model.Mission {
	return model.Mission{
		UUID:           m.UUID,
		MissionName:    m.MissionName,
		Tag:            m.Tag,
		StartTime:      m.StartTime,
		SonarRange:     m.SonarRange,
		SonarHalfAngle: m.SonarHalfAngle,
		Rows:           m.Rows,
		Cols:           m.Cols,
		Start:          geo.PositionToPoint(m.Start),
		Course:         toJSON(m.Course),
		TargetCount:    m.TargetCount,
	}
}

// CoreToFrame converts a core.Frame to a GORM model.Frame.
func CoreToFrame(f core.Frame) model.Frame {
	return model.Frame{
		Time:          f.Time,
		MissionID:     f.MissionID,
		CaptureFrame:  f.CaptureFrame,
		Position:      geo.PositionToPoint(f.Position),
		Heading:       f.Heading,
		Footprint:     geo.TriangleToPolygon(f.Footprint),
		FootprintArea: geo.FootprintArea(f.Footprint),
		FOV:           toJSON(f.FOV),
		FOVCells:      len(f.FOV),
		Discovered:    f.Discovered,
		Degenerate:    f.Degenerate,
	}
}

// CoreToDiscovery converts a core.Discovery to a GORM model.Discovery.
func CoreToDiscovery(d core.Discovery) model.Discovery {
	world := geom.NewEmptyPoint(geom.DimXY)
	if d.World != nil {
		world = geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: d.World.X, Y: d.World.Y},
			Type: geom.DimXY,
		})
	}
	return model.Discovery{
		Time:         d.Time,
		MissionID:    d.MissionID,
		CaptureFrame: d.CaptureFrame,
		Row:          d.Cell.Row,
		Col:          d.Cell.Col,
		Position:     geo.CellToPoint(d.Cell),
		World:        world,
	}
}
