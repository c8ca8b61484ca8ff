// Package model holds the gorm models of a recorded survey.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Mission{},
	&Frame{},
	&Discovery{},
	&ScanPerformance{},
}

////////////////////////
// MISSION
////////////////////////

// Mission is one survey run with the sensor and map parameters it was started with.
type Mission struct {
	gorm.Model
	UUID           string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	MissionName    string         `json:"missionName" gorm:"size:200"`
	Tag            string         `json:"tag" gorm:"size:127"`
	StartTime      time.Time      `json:"missionStart" gorm:"type:timestamptz;index:idx_mission_start"`
	EndTime        *time.Time     `json:"missionEnd" gorm:"type:timestamptz"`
	SonarRange     float64        `json:"sonarRange"`
	SonarHalfAngle float64        `json:"sonarHalfAngle"`
	Rows           int            `json:"rows"`
	Cols           int            `json:"cols"`
	Start          geom.Point     `json:"start"`                                // grid position, X = col, Y = row
	Course         datatypes.JSON `json:"course" gorm:"type:jsonb;default:'[]'"` // []core.Segment
	TargetCount    int            `json:"targetCount"`
	TargetsFound   int            `json:"targetsFound"`
	Steps          uint           `json:"steps"`
	Track          geom.Geometry  `json:"-"` // LineString of apex positions, set on EndMission

	Frames      []Frame
	Discoveries []Discovery
}

func (*Mission) TableName() string {
	return "missions"
}

////////////////////////
// TIME SERIES
////////////////////////

// Frame is the scan state after one step.
type Frame struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time          time.Time      `json:"time" gorm:"type:timestamptz;"`
	MissionID     uint           `json:"missionId" gorm:"index:idx_frame_mission_id"`
	Mission       Mission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame  uint           `json:"captureFrame" gorm:"index:idx_frame_capture_frame"`
	Position      geom.Point     `json:"position"` // vehicle apex, grid units
	Heading       float64        `json:"heading"`
	Footprint     geom.Polygon   `json:"footprint"`
	FootprintArea float64        `json:"footprintArea"`
	FOV           datatypes.JSON `json:"fov" gorm:"type:jsonb;default:'[]'"` // []core.Cell, row-major
	FOVCells      int            `json:"fovCells"`
	Discovered    int            `json:"discovered"`
	Degenerate    bool           `json:"degenerate" gorm:"default:false"`
}

func (*Frame) TableName() string {
	return "frames"
}

// Discovery is a target cell and the step it first entered the field of view.
type Discovery struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	MissionID    uint       `json:"missionId" gorm:"uniqueIndex:idx_discovery_cell"`
	Mission      Mission    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame uint       `json:"captureFrame"`
	Row          int        `json:"row" gorm:"uniqueIndex:idx_discovery_cell"`
	Col          int        `json:"col" gorm:"uniqueIndex:idx_discovery_cell"`
	Position     geom.Point `json:"position"`      // grid units
	World        geom.Point `json:"worldPosition"` // EPSG:3857, empty when not georeferenced
}

func (*Discovery) TableName() string {
	return "discoveries"
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// ScanPerformance records the recorder's write queue state after each flush.
type ScanPerformance struct {
	ID                  uint              `json:"id" gorm:"primarykey;autoIncrement;"`
	Time                time.Time         `json:"time" gorm:"type:timestamptz;index:idx_time"`
	MissionID           uint              `json:"missionId" gorm:"index:idx_scanperformance_mission_id"`
	Mission             Mission           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*ScanPerformance) TableName() string {
	return "scan_performances"
}

// WriteQueueLengths is the number of rows waiting in each write queue
type WriteQueueLengths struct {
	Frames      uint32 `json:"frames"`
	Discoveries uint32 `json:"discoveries"`
}
