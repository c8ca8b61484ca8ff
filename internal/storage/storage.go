// Package storage defines the recording backend contract shared by the memory, gorm,
// sqlite and postgres backends.
package storage

import "github.com/hydrocamel/sonarscan/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Mission management (StartMission assigns the mission ID)
	StartMission(mission *core.Mission) error
	EndMission() error

	// State recording
	RecordFrame(f *core.Frame) error
	RecordDiscovery(d *core.Discovery) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the results server.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
