package worker

import (
	"errors"
	"time"

	"github.com/hydrocamel/sonarscan/internal/dispatcher"
	"github.com/hydrocamel/sonarscan/internal/geo"
	"github.com/hydrocamel/sonarscan/internal/mission"
	"github.com/hydrocamel/sonarscan/internal/scan"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// EventDispatcher is the part of the dispatcher the recorder needs.
type EventDispatcher interface {
	Dispatch(dispatcher.Event) (any, error)
}

// Recorder is a scan.Renderer that records every snapshot it is handed.
type Recorder struct {
	d       EventDispatcher
	mission *mission.Context
	geo     *geo.Georeference
	now     func() time.Time
}

var _ scan.Renderer = (*Recorder)(nil)

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithGeoreference stamps discoveries with EPSG:3857 coordinates.
func WithGeoreference(g *geo.Georeference) RecorderOption {
	return func(r *Recorder) { r.geo = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a recorder dispatching to d.
func NewRecorder(d EventDispatcher, mc *mission.Context, opts ...RecorderOption) *Recorder {
	r := &Recorder{d: d, mission: mc, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render dispatches a frame event and one discovery event per target found on this step.
func (r *Recorder) Render(s scan.Snapshot) error {
	m := r.mission.GetMission()
	r.mission.SetStep(s.Step)
	now := r.now()

	frame := &core.Frame{
		MissionID:    m.ID,
		Time:         now,
		CaptureFrame: uint(s.Step),
		Position:     s.Position,
		Heading:      s.Heading,
		Footprint:    s.Triangle.Vertices(),
		FOV:          s.FOV,
		Discovered:   len(s.Targets),
		Degenerate:   s.Degenerate,
	}

	var errs []error
	if _, err := r.d.Dispatch(dispatcher.Event{Command: CmdFrame, Payload: frame, Timestamp: now}); err != nil {
		errs = append(errs, err)
	}

	for _, c := range s.NewTargets {
		d := &core.Discovery{
			MissionID:    m.ID,
			Time:         now,
			CaptureFrame: uint(s.Step),
			Cell:         c,
		}
		if r.geo != nil {
			w := r.geo.World(core.Position{Row: float64(c.Row), Col: float64(c.Col)})
			d.World = &w
		}
		if _, err := r.d.Dispatch(dispatcher.Event{Command: CmdDiscovery, Payload: d, Timestamp: now}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
