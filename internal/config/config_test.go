package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"scenario": { "name": "Harbour", "range": 9 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "Harbour", viper.GetString("scenario.name"))
	assert.Equal(t, 9.0, viper.GetFloat64("scenario.range"))
	assert.Equal(t, 60.0, viper.GetFloat64("scenario.halfAngle"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./scanlogs", viper.GetString("logsDir"))
	assert.Equal(t, "", viper.GetString("api.serverUrl"))
	assert.Equal(t, "", viper.GetString("api.apiKey"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "postgres", viper.GetString("db.password"))
	assert.Equal(t, "sonarscan", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "scan_telemetry", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./recordings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "sonarscan", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, "", viper.GetString("otel.endpoint"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, "text", viper.GetString("render.mode"))
	assert.Equal(t, false, viper.GetBool("geo.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// Defaults are registered even without a file.
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetScenarioConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	sc, err := GetScenarioConfig()
	require.NoError(t, err)

	assert.Equal(t, "Survey", sc.Name)
	assert.Equal(t, 6.0, sc.Range)
	assert.Equal(t, 60.0, sc.HalfAngle)
	assert.Equal(t, 20, sc.Rows)
	assert.Equal(t, 15, sc.Cols)
	assert.Equal(t, core.Position{Row: 14, Col: 1}, sc.Start)
	assert.Equal(t, []core.Segment{{Velocity: core.Velocity{DRow: 0, DCol: 1}, Duration: 8}}, sc.Course)
	assert.Empty(t, sc.Targets)
	assert.Equal(t, int64(1), sc.Seed)
	assert.Equal(t, "bbox", sc.Strategy)
}

func TestGetScenarioConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"scenario": {
			"range": 9,
			"halfAngle": 45,
			"rows": 25,
			"cols": 20,
			"start": [10, 10],
			"course": [
				{ "velocity": [2, 2], "duration": 2 },
				{ "velocity": [-2, -2], "duration": 2 }
			],
			"targets": [[14, 7], [16, 6]],
			"targetDensity": 0.05,
			"seed": 42,
			"strategy": "full"
		}
	}`)))

	sc, err := GetScenarioConfig()
	require.NoError(t, err)

	assert.Equal(t, 9.0, sc.Range)
	assert.Equal(t, 45.0, sc.HalfAngle)
	assert.Equal(t, 25, sc.Rows)
	assert.Equal(t, core.Position{Row: 10, Col: 10}, sc.Start)
	assert.Equal(t, []core.Segment{
		{Velocity: core.Velocity{DRow: 2, DCol: 2}, Duration: 2},
		{Velocity: core.Velocity{DRow: -2, DCol: -2}, Duration: 2},
	}, sc.Course)
	assert.Equal(t, []core.Cell{{Row: 14, Col: 7}, {Row: 16, Col: 6}}, sc.Targets)
	assert.Equal(t, 0.05, sc.TargetDensity)
	assert.Equal(t, int64(42), sc.Seed)
	assert.Equal(t, "full", sc.Strategy)
	assert.Equal(t, "Survey", sc.Name)
}

func TestGetScenarioConfig_Malformed(t *testing.T) {
	tests := map[string]string{
		"start":   `{"scenario": {"start": [1]}}`,
		"course":  `{"scenario": {"course": [{"velocity": [1], "duration": 1}]}}`,
		"targets": `{"scenario": {"targets": [[1, 2, 3]]}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			require.NoError(t, Load(writeConfig(t, body)))

			_, err := GetScenarioConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "scenario."+name)
		})
	}
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./recordings", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "", cfg.SQLite.Path)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m", "path": "/tmp/scan.db" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/scan.db", sc.SQLite.Path)
}

func TestGetStorageConfig_BadDurationFallsBack(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"storage": {"sqlite": {"dumpInterval": "soon"}}}`)))

	assert.Equal(t, 3*time.Minute, GetStorageConfig().SQLite.DumpInterval)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "sonarscan", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfrastructureConfigs(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"render": { "mode": "png", "outputDir": "/tmp/frames" },
		"db": { "database": "survey" },
		"influx": { "enabled": true, "token": "t0k", "bucket": "b" },
		"graylog": { "enabled": true, "address": "gelf:12201" },
		"api": { "serverUrl": "http://results", "apiKey": "secret" },
		"geo": { "enabled": true, "originLon": 10.5, "originLat": 59.9, "cellSize": 2.5 }
	}`)))

	assert.Equal(t, RenderConfig{Mode: "png", OutputDir: "/tmp/frames"}, GetRenderConfig())

	db := GetDBConfig()
	assert.Equal(t, "survey", db.Database)
	assert.Equal(t, "localhost", db.Host)

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "t0k", ic.Token)
	assert.Equal(t, "b", ic.Bucket)
	assert.Equal(t, "sonarscan", ic.Org)

	assert.Equal(t, GraylogConfig{Enabled: true, Address: "gelf:12201"}, GetGraylogConfig())
	assert.Equal(t, APIConfig{ServerURL: "http://results", APIKey: "secret"}, GetAPIConfig())
	assert.Equal(t, GeoConfig{Enabled: true, OriginLon: 10.5, OriginLat: 59.9, CellSize: 2.5}, GetGeoConfig())
}
