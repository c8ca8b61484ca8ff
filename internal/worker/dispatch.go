package worker

import (
	"fmt"

	"github.com/hydrocamel/sonarscan/internal/dispatcher"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// RegisterHandlers registers the recording handlers with the dispatcher.
// Both are buffered and blocking so a slow backend slows the scan instead of
// dropping frames.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(CmdFrame, m.handleFrame, dispatcher.Buffered(1000), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdDiscovery, m.handleDiscovery, dispatcher.Buffered(100), dispatcher.Blocking(), dispatcher.Logged())
}

func (m *Manager) handleFrame(e dispatcher.Event) (any, error) {
	f, ok := e.Payload.(*core.Frame)
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Command, e.Payload)
	}

	if err := m.backend.RecordFrame(f); err != nil {
		return nil, fmt.Errorf("failed to record frame %d: %w", f.CaptureFrame, err)
	}

	if m.deps.Telemetry != nil {
		name := m.deps.MissionContext.GetMission().MissionName
		if err := m.deps.Telemetry.WriteFrame(name, f); err != nil {
			m.deps.LogManager.Logger().Warn("Failed to write frame telemetry", "step", f.CaptureFrame, "error", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleDiscovery(e dispatcher.Event) (any, error) {
	d, ok := e.Payload.(*core.Discovery)
	if !ok || d == nil {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Command, e.Payload)
	}

	if err := m.backend.RecordDiscovery(d); err != nil {
		return nil, fmt.Errorf("failed to record discovery %s: %w", d.Cell, err)
	}
	m.deps.LogManager.Logger().Info("Target recorded", "row", d.Cell.Row, "col", d.Cell.Col, "step", d.CaptureFrame)
	return nil, nil
}
