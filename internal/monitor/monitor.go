// Package monitor reports recording health while a scan runs: write queue depths
// and the last database write duration, as a status file and optional telemetry.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hydrocamel/sonarscan/internal/logging"
	"github.com/hydrocamel/sonarscan/internal/mission"
	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementStatus is the InfluxDB measurement the monitor writes.
const MeasurementStatus = "scan_status"

const defaultInterval = time.Second

// QueueReporter is implemented by backends that buffer writes.
type QueueReporter interface {
	QueueLengths() model.WriteQueueLengths
}

// WriteDurationReporter exposes the duration of the last database write cycle.
type WriteDurationReporter interface {
	GetLastDBWriteDuration() time.Duration
}

// PointWriter receives status points.
type PointWriter interface {
	WritePoint(p *write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager     *logging.SlogManager
	MissionContext *mission.Context
	WriteDuration  WriteDurationReporter
	Queues         QueueReporter // optional
	Telemetry      PointWriter   // optional
	StatusPath     string        // optional; status JSON is rewritten every tick
	Interval       time.Duration
}

// Status is one sample of the recording health.
type Status struct {
	Time                time.Time               `json:"time"`
	Mission             string                  `json:"mission"`
	MissionID           uint                    `json:"missionId"`
	Step                int                     `json:"step"`
	WriteQueues         model.WriteQueueLengths `json:"writeQueues"`
	LastWriteDurationMs float32                 `json:"lastWriteDurationMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus samples the current status.
func (s *Service) GetProgramStatus() Status {
	m := s.deps.MissionContext.GetMission()
	st := Status{
		Time:      time.Now(),
		Mission:   m.MissionName,
		MissionID: m.ID,
		Step:      s.deps.MissionContext.Step(),
	}
	if s.deps.Queues != nil {
		st.WriteQueues = s.deps.Queues.QueueLengths()
	}
	if s.deps.WriteDuration != nil {
		st.LastWriteDurationMs = float32(s.deps.WriteDuration.GetLastDBWriteDuration().Microseconds()) / 1000
	}
	return st
}

// StatusPoint converts a status sample to an InfluxDB point.
func StatusPoint(st Status) *write.Point {
	return write.NewPoint(
		MeasurementStatus,
		map[string]string{"mission": st.Mission},
		map[string]any{
			"step":                st.Step,
			"queue_frames":        int64(st.WriteQueues.Frames),
			"queue_discoveries":   int64(st.WriteQueues.Discoveries),
			"last_write_duration": float64(st.LastWriteDurationMs),
		},
		st.Time,
	)
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})

	s.wg.Add(1)
	go s.loop(s.stopChan)
}

func (s *Service) loop(stop <-chan struct{}) {
	defer s.wg.Done()
	logger := s.deps.LogManager.Logger()
	logger.Debug("Starting status monitor", "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.deps.MissionContext.GetMission().ID == 0 {
				continue
			}
			if err := s.report(s.GetProgramStatus()); err != nil {
				logger.Warn("Failed to report status", "error", err)
			}
		}
	}
}

func (s *Service) report(st Status) error {
	if s.deps.StatusPath != "" {
		if err := writeStatusFile(s.deps.StatusPath, st); err != nil {
			return err
		}
	}
	if s.deps.Telemetry != nil {
		if err := s.deps.Telemetry.WritePoint(StatusPoint(st)); err != nil {
			return fmt.Errorf("write status point: %w", err)
		}
	}
	return nil
}

// writeStatusFile replaces path so readers never see a partial file.
func writeStatusFile(path string, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".status-*")
	if err != nil {
		return fmt.Errorf("create status file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.isRunning {
		close(s.stopChan)
		s.isRunning = false
	}
	s.mu.Unlock()
	s.wg.Wait()
}
