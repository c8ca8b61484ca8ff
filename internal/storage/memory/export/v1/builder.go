package v1

import (
	"cmp"
	"slices"
	"time"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// MissionData contains all the data needed to build an export
type MissionData struct {
	Mission     *core.Mission
	Frames      []core.Frame
	Discoveries []core.Discovery
}

// Build creates an Export from the mission data. Frames are ordered by capture
// frame and targets column-major, the order the scan reports them in.
func Build(data *MissionData) Export {
	m := data.Mission
	export := Export{
		FormatVersion: Version,
		MissionName:   m.MissionName,
		MissionUUID:   m.UUID,
		Tag:           m.Tag,
		Sensor:        Sensor{Range: m.SonarRange, HalfAngle: m.SonarHalfAngle},
		Map:           Map{Rows: m.Rows, Cols: m.Cols},
		Start:         point(m.Start),
		Course:        make([]Leg, 0, len(m.Course)),
		TargetCount:   m.TargetCount,
		Frames:        make([]Frame, 0, len(data.Frames)),
		Targets:       make([]Target, 0, len(data.Discoveries)),
	}
	if !m.StartTime.IsZero() {
		export.StartTime = m.StartTime.UTC().Format(time.RFC3339)
	}

	for _, seg := range m.Course {
		export.Course = append(export.Course, Leg{
			Velocity: Point{seg.Velocity.DRow, seg.Velocity.DCol},
			Duration: seg.Duration,
		})
	}

	frames := slices.Clone(data.Frames)
	slices.SortStableFunc(frames, func(a, b core.Frame) int {
		return cmp.Compare(a.CaptureFrame, b.CaptureFrame)
	})
	for _, f := range frames {
		export.Frames = append(export.Frames, buildFrame(f))
		export.EndFrame = max(export.EndFrame, f.CaptureFrame)
	}

	for _, d := range data.Discoveries {
		t := Target{Row: d.Cell.Row, Col: d.Cell.Col, CaptureFrame: d.CaptureFrame}
		if d.World != nil {
			t.World = &Point{d.World.X, d.World.Y}
		}
		export.Targets = append(export.Targets, t)
	}
	slices.SortStableFunc(export.Targets, func(a, b Target) int {
		if c := cmp.Compare(a.Col, b.Col); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})

	return export
}

func buildFrame(f core.Frame) Frame {
	out := Frame{
		Frame:      f.CaptureFrame,
		Position:   point(f.Position),
		Heading:    f.Heading,
		FOV:        make([]Cell, 0, len(f.FOV)),
		Discovered: f.Discovered,
		Degenerate: f.Degenerate,
	}
	if !f.Time.IsZero() {
		out.Time = f.Time.UTC().Format(time.RFC3339Nano)
	}
	for i, v := range f.Footprint {
		out.Footprint[i] = point(v)
	}
	for _, c := range f.FOV {
		out.FOV = append(out.FOV, Cell{c.Row, c.Col})
	}
	return out
}

func point(p core.Position) Point {
	return Point{p.Row, p.Col}
}
