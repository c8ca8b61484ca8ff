package database

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hydrocamel/sonarscan/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSqliteDB_FileAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.db")

	db, err := GetSqliteDB(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"missions", "frames", "discoveries", "scan_performances"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	m := model.Mission{MissionName: "Survey", UUID: "u-1"}
	require.NoError(t, db.Create(&m).Error)
	assert.NotZero(t, m.ID)
}

func TestManager_SetupRequiresConnection(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
}

func TestManager_ConnectSqliteAndDump(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf).Level(zerolog.DebugLevel))

	require.NoError(t, m.ConnectSqlite(filepath.Join(t.TempDir(), "live.db")))
	require.NoError(t, m.Setup())
	require.NoError(t, m.DB.Create(&model.Mission{MissionName: "Survey", UUID: "u-2"}).Error)

	dump := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(dump, []byte("stale"), 0o644))
	require.NoError(t, m.DumpMemoryToDisk(dump))

	restored, err := GetSqliteDB(dump)
	require.NoError(t, err)
	var count int64
	require.NoError(t, restored.Model(&model.Mission{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.Contains(t, buf.String(), "Database setup complete")
	assert.Contains(t, buf.String(), "Dumped memory DB to disk")
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestNamedMemoryDSN_Isolated(t *testing.T) {
	a, err := GetSqliteDB(NamedMemoryDSN("dsn-a"))
	require.NoError(t, err)
	b, err := GetSqliteDB(NamedMemoryDSN("dsn-b"))
	require.NoError(t, err)

	require.NoError(t, Migrate(a))
	require.NoError(t, a.Create(&model.Mission{MissionName: "A", UUID: "u-a"}).Error)

	assert.False(t, b.Migrator().HasTable("missions"))
}
