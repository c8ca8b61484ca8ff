// Package gormstorage implements storage.Backend on any gorm database. Frames and
// discoveries are queued and written in batches by a background goroutine; the
// mission row is inserted synchronously so its ID is known before the first frame.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hydrocamel/sonarscan/internal/database"
	"github.com/hydrocamel/sonarscan/internal/geo"
	"github.com/hydrocamel/sonarscan/internal/logging"
	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/hydrocamel/sonarscan/internal/model/convert"
	"github.com/hydrocamel/sonarscan/internal/queue"
	"github.com/hydrocamel/sonarscan/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 2000
)

var (
	// ErrNoDatabase is returned by Init when no connection was injected.
	ErrNoDatabase = errors.New("no database connection")
	// ErrNotInitialized is returned when recording before Init.
	ErrNotInitialized = errors.New("storage backend not initialized")
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
	BatchSize     int
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Frames      *queue.Queue[model.Frame]
	Discoveries *queue.Queue[model.Discovery]
}

func newQueues() *queues {
	return &queues{
		Frames:      queue.New[model.Frame](),
		Discoveries: queue.New[model.Discovery](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	missionID atomic.Uint64
	stopChan  chan struct{}
	done      chan struct{}

	// flushMu serializes the writer goroutine with explicit flushes.
	flushMu       sync.Mutex
	lastWriteNano atomic.Int64

	trackMu sync.Mutex
	track   []core.Position
	found   int
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}

	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	select {
	case <-b.stopChan:
		return nil
	default:
	}
	close(b.stopChan)
	<-b.done
	return b.Flush()
}

// StartMission inserts the mission row and assigns its ID back to the core mission.
func (b *Backend) StartMission(m *core.Mission) error {
	row := convert.CoreToMission(*m)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new mission: %w", err)
	}
	m.ID = row.ID
	b.missionID.Store(uint64(row.ID))

	b.trackMu.Lock()
	b.track = nil
	b.found = 0
	b.trackMu.Unlock()

	b.deps.LogManager.WriteLog("StartMission", fmt.Sprintf("Mission %d created", row.ID), "INFO")
	return nil
}

// MissionID returns the ID of the mission being recorded.
func (b *Backend) MissionID() uint {
	return uint(b.missionID.Load())
}

// EndMission flushes the queues and stamps the mission row with its totals and track.
func (b *Backend) EndMission() error {
	if err := b.Flush(); err != nil {
		return err
	}

	id := b.MissionID()
	if id == 0 {
		return nil
	}

	b.trackMu.Lock()
	steps := len(b.track)
	found := b.found
	track := b.track
	b.trackMu.Unlock()

	updates := map[string]any{
		"end_time":      time.Now(),
		"steps":         uint(max(steps-1, 0)),
		"targets_found": found,
	}
	if ls, err := geo.TrackLineString(track); err == nil {
		updates["track"] = ls.AsGeometry()
	}

	if err := b.deps.DB.Model(&model.Mission{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to finalize mission %d: %w", id, err)
	}
	return nil
}

// RecordFrame converts and queues a frame.
func (b *Backend) RecordFrame(f *core.Frame) error {
	if b == nil || b.queues == nil {
		return ErrNotInitialized
	}
	row := convert.CoreToFrame(*f)
	if row.MissionID == 0 {
		row.MissionID = b.MissionID()
	}
	b.queues.Frames.Push(row)

	b.trackMu.Lock()
	b.track = append(b.track, f.Position)
	b.trackMu.Unlock()
	return nil
}

// RecordDiscovery converts and queues a discovery.
func (b *Backend) RecordDiscovery(d *core.Discovery) error {
	if b == nil || b.queues == nil {
		return ErrNotInitialized
	}
	row := convert.CoreToDiscovery(*d)
	if row.MissionID == 0 {
		row.MissionID = b.MissionID()
	}
	b.queues.Discoveries.Push(row)

	b.trackMu.Lock()
	b.found++
	b.trackMu.Unlock()
	return nil
}

// GetLastDBWriteDuration returns the duration of the last write cycle.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWriteNano.Load())
}

// QueueLengths reports how many rows are waiting to be written.
func (b *Backend) QueueLengths() model.WriteQueueLengths {
	if b.queues == nil {
		return model.WriteQueueLengths{}
	}
	return model.WriteQueueLengths{
		Frames:      uint32(b.queues.Frames.Len()),
		Discoveries: uint32(b.queues.Discoveries.Len()),
	}
}

func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog("writeLoop", fmt.Sprintf("Error writing to DB: %v", err), "ERROR")
			}
		}
	}
}

// Flush writes every queued row now.
func (b *Backend) Flush() error {
	if b.queues == nil {
		return nil
	}
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	pending := b.QueueLengths()
	frames := b.queues.Frames.GetAndEmpty()
	discoveries := b.queues.Discoveries.GetAndEmpty()
	if len(frames) == 0 && len(discoveries) == 0 {
		return nil
	}

	start := time.Now()
	db := b.deps.DB.Omit(clause.Associations)

	var errs []error
	if len(frames) > 0 {
		if err := db.CreateInBatches(&frames, b.deps.BatchSize).Error; err != nil {
			errs = append(errs, fmt.Errorf("failed to write %d frames: %w", len(frames), err))
		}
	}
	if len(discoveries) > 0 {
		if err := db.CreateInBatches(&discoveries, b.deps.BatchSize).Error; err != nil {
			errs = append(errs, fmt.Errorf("failed to write %d discoveries: %w", len(discoveries), err))
		}
	}

	elapsed := time.Since(start)
	b.lastWriteNano.Store(int64(elapsed))

	if id := b.MissionID(); id != 0 {
		perf := model.ScanPerformance{
			Time:                time.Now(),
			MissionID:           id,
			WriteQueueLengths:   pending,
			LastWriteDurationMs: float32(elapsed.Microseconds()) / 1000,
		}
		if err := db.Create(&perf).Error; err != nil {
			errs = append(errs, fmt.Errorf("failed to write performance row: %w", err))
		}
	}

	return errors.Join(errs...)
}
