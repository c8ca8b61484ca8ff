package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hydrocamel/sonarscan/internal/database"
	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/hydrocamel/sonarscan/internal/model/convert"
	"github.com/hydrocamel/sonarscan/internal/storage"
	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

// newTestBackend opens a file-backed SQLite database private to the test.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testMission() *core.Mission {
	return &core.Mission{
		UUID:           "7d3b3a3e-8c3e-4d8e-b0a4-2f1f4c8f9a10",
		MissionName:    "Survey",
		StartTime:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		SonarRange:     6,
		SonarHalfAngle: 60,
		Rows:           20,
		Cols:           15,
		Start:          core.Position{Row: 14, Col: 1},
		Course:         []core.Segment{{Velocity: core.Velocity{DCol: 1}, Duration: 2}},
		TargetCount:    1,
	}
}

func frameAt(step uint, col float64) *core.Frame {
	return &core.Frame{
		CaptureFrame: step,
		Position:     core.Position{Row: 14, Col: col},
		Heading:      90,
		Footprint: [3]core.Position{
			{Row: 14, Col: col},
			{Row: 8, Col: col},
			{Row: 17, Col: col + 5.196152422706632},
		},
		FOV: []core.Cell{{Row: 13, Col: int(col) + 1}, {Row: 14, Col: int(col)}},
	}
}

func TestInit_RequiresDB(t *testing.T) {
	b := New(Dependencies{})
	assert.ErrorIs(t, b.Init(), ErrNoDatabase)
	assert.NoError(t, b.Close())
}

func TestRecord_BeforeInit(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db})

	assert.ErrorIs(t, b.RecordFrame(frameAt(0, 1)), ErrNotInitialized)
	assert.ErrorIs(t, b.RecordDiscovery(&core.Discovery{Cell: core.Cell{Row: 14, Col: 7}}), ErrNotInitialized)
	assert.Equal(t, model.WriteQueueLengths{}, b.QueueLengths())
}

func TestStartMission_AssignsID(t *testing.T) {
	b := newTestBackend(t)

	m := testMission()
	require.NoError(t, b.StartMission(m))
	assert.NotZero(t, m.ID)
	assert.Equal(t, m.ID, b.MissionID())

	var row model.Mission
	require.NoError(t, b.DB().First(&row, m.ID).Error)
	assert.Equal(t, "Survey", row.MissionName)
	assert.Equal(t, m.Course, convert.MissionToCore(row).Course)
}

func TestRecordFrame_QueuedUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	m := testMission()
	require.NoError(t, b.StartMission(m))

	require.NoError(t, b.RecordFrame(frameAt(0, 1)))
	require.NoError(t, b.RecordFrame(frameAt(1, 2)))
	assert.Equal(t, model.WriteQueueLengths{Frames: 2}, b.QueueLengths())

	var count int64
	require.NoError(t, b.DB().Model(&model.Frame{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, b.Flush())
	assert.Equal(t, model.WriteQueueLengths{}, b.QueueLengths())

	var frames []model.Frame
	require.NoError(t, b.DB().Order("capture_frame").Find(&frames).Error)
	require.Len(t, frames, 2)
	assert.Equal(t, m.ID, frames[0].MissionID)

	back := convert.FrameToCore(frames[1])
	assert.Equal(t, core.Position{Row: 14, Col: 2}, back.Position)
	assert.Equal(t, frameAt(1, 2).Footprint, back.Footprint)
	assert.Equal(t, frameAt(1, 2).FOV, back.FOV)

	var perf []model.ScanPerformance
	require.NoError(t, b.DB().Find(&perf).Error)
	require.Len(t, perf, 1)
	assert.Equal(t, uint32(2), perf[0].WriteQueueLengths.Frames)
}

func TestRecordDiscovery_UniquePerMissionCell(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMission(testMission()))

	d := &core.Discovery{CaptureFrame: 3, Cell: core.Cell{Row: 7, Col: 14}}
	require.NoError(t, b.RecordDiscovery(d))
	require.NoError(t, b.Flush())

	require.NoError(t, b.RecordDiscovery(d))
	assert.Error(t, b.Flush(), "the same cell cannot be discovered twice in one mission")
}

func TestEndMission_StampsTotalsAndTrack(t *testing.T) {
	b := newTestBackend(t)
	m := testMission()
	require.NoError(t, b.StartMission(m))

	for i := uint(0); i <= 2; i++ {
		require.NoError(t, b.RecordFrame(frameAt(i, 1+float64(i))))
	}
	require.NoError(t, b.RecordDiscovery(&core.Discovery{CaptureFrame: 2, Cell: core.Cell{Row: 13, Col: 3}}))

	require.NoError(t, b.EndMission())

	var row model.Mission
	require.NoError(t, b.DB().First(&row, m.ID).Error)
	require.NotNil(t, row.EndTime)
	assert.Equal(t, uint(2), row.Steps)
	assert.Equal(t, 1, row.TargetsFound)

	ls, ok := row.Track.AsLineString()
	require.True(t, ok)
	assert.InDelta(t, 2.0, ls.Length(), 1e-9)

	var discoveries []model.Discovery
	require.NoError(t, b.DB().Find(&discoveries).Error)
	require.Len(t, discoveries, 1)
	assert.Equal(t, core.Cell{Row: 13, Col: 3}, convert.DiscoveryToCore(discoveries[0]).Cell)
}

func TestWriteLoop_FlushesOnTick(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "tick.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartMission(testMission()))
	require.NoError(t, b.RecordFrame(frameAt(0, 1)))

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.Frame{}).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, b.GetLastDBWriteDuration())
}

func TestClose_WritesRemainingRows(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartMission(testMission()))
	require.NoError(t, b.RecordFrame(frameAt(0, 1)))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Frame{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
