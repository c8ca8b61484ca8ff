// Package websocket streams a recording live to the results server instead of
// storing it locally.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/hydrocamel/sonarscan/pkg/streaming"
)

// ErrNoMission is returned when frames arrive before StartMission.
var ErrNoMission = errors.New("no mission started")

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams frames and discoveries over a WebSocket. Start and end of a
// mission wait for the server's ack; frames and discoveries do not.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn    *connection
	cfg     Config
	mission *core.Mission
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the server.
func (b *Backend) Close() error {
	return b.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartMission announces the mission and waits for the server's ack. The message
// is replayed after a reconnect.
func (b *Backend) StartMission(m *core.Mission) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	data, err := marshalEnvelope(streaming.TypeStartMission, streaming.NewStartMissionPayload(m))
	if err != nil {
		return err
	}
	b.conn.setReplay(data)
	b.mission = m
	return b.conn.sendAndWait(data, streaming.TypeStartMission, ackTimeout)
}

// EndMission sends end_mission and waits for the server's ack.
func (b *Backend) EndMission() error {
	if b.mission == nil {
		return ErrNoMission
	}
	data, err := marshalEnvelope(streaming.TypeEndMission, map[string]string{"uuid": b.mission.UUID})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndMission, ackTimeout)

	b.conn.setReplay(nil)
	b.mission = nil
	return err
}

func (b *Backend) RecordFrame(f *core.Frame) error {
	if b.mission == nil {
		return ErrNoMission
	}
	return b.send(streaming.TypeFrame, streaming.NewFramePayload(f))
}

func (b *Backend) RecordDiscovery(d *core.Discovery) error {
	if b.mission == nil {
		return ErrNoMission
	}
	return b.send(streaming.TypeDiscovery, streaming.NewDiscoveryPayload(d))
}

func (b *Backend) send(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}
