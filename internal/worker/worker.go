// Package worker registers the recording handlers on the dispatcher and turns engine
// snapshots into recording events.
package worker

import (
	"errors"
	"time"

	"github.com/hydrocamel/sonarscan/internal/logging"
	"github.com/hydrocamel/sonarscan/internal/mission"
	"github.com/hydrocamel/sonarscan/internal/storage"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// Commands routed through the dispatcher.
const (
	CmdFrame     = ":FRAME:"
	CmdDiscovery = ":DISCOVERY:"
)

// ErrUnexpectedPayload is returned when an event carries the wrong payload type.
var ErrUnexpectedPayload = errors.New("unexpected payload")

// Telemetry receives a point per recorded frame.
type Telemetry interface {
	WriteFrame(mission string, f *core.Frame) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager     *logging.SlogManager
	MissionContext *mission.Context
	Telemetry      Telemetry // optional
}

// Manager routes recording events to the storage backend and telemetry.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}
