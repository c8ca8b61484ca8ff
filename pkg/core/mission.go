// pkg/core/mission.go
package core

import "time"

// Mission represents one recorded survey run
type Mission struct {
	ID          uint
	UUID        string
	MissionName string
	Tag         string
	StartTime   time.Time

	// Sensor and map parameters the run was started with
	SonarRange     float64
	SonarHalfAngle float64
	Rows           int
	Cols           int
	Start          Position
	Course         []Segment
	TargetCount    int
}

// UploadMetadata contains mission information needed for upload to the results server.
type UploadMetadata struct {
	MissionName     string
	MissionDuration float64
	Tag             string
	TargetsFound    int
}
