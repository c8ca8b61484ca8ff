// Package streaming defines the messages a live recording sends to the results
// server over a WebSocket.
package streaming

import (
	"encoding/json"
	"time"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// Message types.
const (
	TypeStartMission = "start_mission"
	TypeEndMission   = "end_mission"
	TypeFrame        = "frame"
	TypeDiscovery    = "discovery"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement of a message that requires one.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the acknowledged message type
}

// StartMissionPayload describes the survey being streamed.
type StartMissionPayload struct {
	UUID      string         `json:"uuid"`
	Name      string         `json:"name"`
	Tag       string         `json:"tag,omitempty"`
	StartTime time.Time      `json:"startTime"`
	Range     float64        `json:"range"`
	HalfAngle float64        `json:"halfAngle"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Start     core.Position  `json:"start"`
	Course    []core.Segment `json:"course"`
	Targets   int            `json:"targetCount"`
}

// FramePayload is one scan step.
type FramePayload struct {
	Step       uint             `json:"step"`
	Position   core.Position    `json:"position"`
	Heading    float64          `json:"heading"`
	Footprint  [3]core.Position `json:"footprint"`
	FOV        []core.Cell      `json:"fov"`
	Discovered int              `json:"discovered"`
	Degenerate bool             `json:"degenerate,omitempty"`
}

// DiscoveryPayload is a target found during the scan.
type DiscoveryPayload struct {
	Step  uint                `json:"step"`
	Cell  core.Cell           `json:"cell"`
	World *core.WorldPosition `json:"world,omitempty"`
}

// NewStartMissionPayload builds the start message for m.
func NewStartMissionPayload(m *core.Mission) StartMissionPayload {
	return StartMissionPayload{
		UUID:      m.UUID,
		Name:      m.MissionName,
		Tag:       m.Tag,
		StartTime: m.StartTime,
		Range:     m.SonarRange,
		HalfAngle: m.SonarHalfAngle,
		Rows:      m.Rows,
		Cols:      m.Cols,
		Start:     m.Start,
		Course:    m.Course,
		Targets:   m.TargetCount,
	}
}

// NewFramePayload builds the frame message for f.
func NewFramePayload(f *core.Frame) FramePayload {
	return FramePayload{
		Step:       f.CaptureFrame,
		Position:   f.Position,
		Heading:    f.Heading,
		Footprint:  f.Footprint,
		FOV:        f.FOV,
		Discovered: f.Discovered,
		Degenerate: f.Degenerate,
	}
}

// NewDiscoveryPayload builds the discovery message for d.
func NewDiscoveryPayload(d *core.Discovery) DiscoveryPayload {
	return DiscoveryPayload{Step: d.CaptureFrame, Cell: d.Cell, World: d.World}
}
