// Package memory keeps a mission in memory and exports it as JSON when it ends.
package memory

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// ErrNoMission is returned when recording before StartMission.
var ErrNoMission = errors.New("no mission started")

// Backend stores mission data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	mission *core.Mission

	frames      []core.Frame
	discoveries []core.Discovery

	lastExportPath     string
	lastExportMetadata core.UploadMetadata
	idCounter          uint
	mu                 sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMission begins recording a new mission. It assigns a mission ID and, when
// missing, a UUID.
func (b *Backend) StartMission(mission *core.Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	mission.ID = b.idCounter
	if mission.UUID == "" {
		mission.UUID = uuid.NewString()
	}
	b.mission = mission

	b.frames = nil
	b.discoveries = nil
	b.lastExportPath = ""
	b.lastExportMetadata = core.UploadMetadata{}
	return nil
}

// EndMission finalizes and exports the mission data
func (b *Backend) EndMission() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return ErrNoMission
	}
	return b.exportJSON()
}

// RecordFrame stores a copy of the frame.
func (b *Backend) RecordFrame(f *core.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return ErrNoMission
	}
	frame := *f
	frame.FOV = slices.Clone(f.FOV)
	b.frames = append(b.frames, frame)
	return nil
}

// RecordDiscovery stores a discovered target.
func (b *Backend) RecordDiscovery(d *core.Discovery) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return ErrNoMission
	}
	b.discoveries = append(b.discoveries, *d)
	return nil
}

// Frames returns the recorded frames in arrival order.
func (b *Backend) Frames() []core.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.frames)
}

// Discoveries returns the recorded discoveries in arrival order.
func (b *Backend) Discoveries() []core.Discovery {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.discoveries)
}

// GetExportedFilePath returns the path of the last export, or "" before EndMission.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last export for the upload request.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMetadata
}
