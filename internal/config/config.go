package config

import (
	"fmt"
	"time"

	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "sonarscan.cfg.json"

const (
	defaultDumpInterval = 3 * time.Minute
	defaultBatchTimeout = 5 * time.Second
)

// ScenarioConfig describes the survey the engine is built from.
type ScenarioConfig struct {
	Name          string
	Tag           string
	Range         float64
	HalfAngle     float64
	Rows          int
	Cols          int
	Start         core.Position
	Course        []core.Segment
	Targets       []core.Cell
	TargetsFile   string
	TargetDensity float64
	Seed          int64
	Strategy      string
}

// RenderConfig selects how frames are displayed.
type RenderConfig struct {
	Mode      string `json:"mode" mapstructure:"mode"`
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration
	Path         string
}

// StorageConfig selects and configures the recording backend
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
}

// DBConfig holds PostgreSQL connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// InfluxConfig holds InfluxDB telemetry settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GraylogConfig holds the GELF sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// APIConfig holds the results server settings
type APIConfig struct {
	ServerURL string
	APIKey    string
}

// GeoConfig places the grid on the globe
type GeoConfig struct {
	Enabled   bool
	OriginLon float64
	OriginLat float64
	CellSize  float64
}

type segmentEntry struct {
	Velocity []float64 `mapstructure:"velocity"`
	Duration int       `mapstructure:"duration"`
}

// setDefaults registers every default value.
func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./scanlogs")

	viper.SetDefault("scenario.name", "Survey")
	viper.SetDefault("scenario.tag", "")
	viper.SetDefault("scenario.range", 6.0)
	viper.SetDefault("scenario.halfAngle", 60.0)
	viper.SetDefault("scenario.rows", 20)
	viper.SetDefault("scenario.cols", 15)
	viper.SetDefault("scenario.start", []float64{14, 1})
	viper.SetDefault("scenario.course", []map[string]any{
		{"velocity": []float64{0, 1}, "duration": 8},
	})
	viper.SetDefault("scenario.targets", [][]int{})
	viper.SetDefault("scenario.targetsFile", "")
	viper.SetDefault("scenario.targetDensity", 0.0)
	viper.SetDefault("scenario.seed", 1)
	viper.SetDefault("scenario.strategy", "bbox")

	viper.SetDefault("render.mode", "text")
	viper.SetDefault("render.outputDir", "./frames")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.path", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "sonarscan")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "sonarscan")
	viper.SetDefault("influx.bucket", "scan_telemetry")
	viper.SetDefault("influx.backupPath", "./scanlogs/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "sonarscan")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("api.serverUrl", "")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("geo.enabled", false)
	viper.SetDefault("geo.originLon", 0.0)
	viper.SetDefault("geo.originLat", 0.0)
	viper.SetDefault("geo.cellSize", 1.0)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults stay in effect
// when the file is missing.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetScenarioConfig returns the survey scenario. Malformed start, course or target
// entries are reported as an error.
func GetScenarioConfig() (ScenarioConfig, error) {
	sc := ScenarioConfig{
		Name:          viper.GetString("scenario.name"),
		Tag:           viper.GetString("scenario.tag"),
		Range:         viper.GetFloat64("scenario.range"),
		HalfAngle:     viper.GetFloat64("scenario.halfAngle"),
		Rows:          viper.GetInt("scenario.rows"),
		Cols:          viper.GetInt("scenario.cols"),
		TargetsFile:   viper.GetString("scenario.targetsFile"),
		TargetDensity: viper.GetFloat64("scenario.targetDensity"),
		Seed:          viper.GetInt64("scenario.seed"),
		Strategy:      viper.GetString("scenario.strategy"),
	}

	var start []float64
	if err := viper.UnmarshalKey("scenario.start", &start); err != nil {
		return sc, fmt.Errorf("scenario.start: %w", err)
	}
	if len(start) != 2 {
		return sc, fmt.Errorf("scenario.start: expected [row, col], got %v", start)
	}
	sc.Start = core.Position{Row: start[0], Col: start[1]}

	var course []segmentEntry
	if err := viper.UnmarshalKey("scenario.course", &course); err != nil {
		return sc, fmt.Errorf("scenario.course: %w", err)
	}
	for i, seg := range course {
		if len(seg.Velocity) != 2 {
			return sc, fmt.Errorf("scenario.course[%d]: expected velocity [dRow, dCol], got %v", i, seg.Velocity)
		}
		sc.Course = append(sc.Course, core.Segment{
			Velocity: core.Velocity{DRow: seg.Velocity[0], DCol: seg.Velocity[1]},
			Duration: seg.Duration,
		})
	}

	var targets [][]int
	if err := viper.UnmarshalKey("scenario.targets", &targets); err != nil {
		return sc, fmt.Errorf("scenario.targets: %w", err)
	}
	for i, t := range targets {
		if len(t) != 2 {
			return sc, fmt.Errorf("scenario.targets[%d]: expected [row, col], got %v", i, t)
		}
		sc.Targets = append(sc.Targets, core.Cell{Row: t[0], Col: t[1]})
	}

	return sc, nil
}

// GetRenderConfig returns the display settings.
func GetRenderConfig() RenderConfig {
	return RenderConfig{
		Mode:      viper.GetString("render.mode"),
		OutputDir: viper.GetString("render.outputDir"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: parseDuration(viper.GetString("storage.sqlite.dumpInterval"), defaultDumpInterval),
			Path:         viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetDBConfig returns the PostgreSQL connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: parseDuration(viper.GetString("otel.batchTimeout"), defaultBatchTimeout),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetAPIConfig returns the results server settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		ServerURL: viper.GetString("api.serverUrl"),
		APIKey:    viper.GetString("api.apiKey"),
	}
}

// GetGeoConfig returns the georeferencing settings.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		Enabled:   viper.GetBool("geo.enabled"),
		OriginLon: viper.GetFloat64("geo.originLon"),
		OriginLat: viper.GetFloat64("geo.originLat"),
		CellSize:  viper.GetFloat64("geo.cellSize"),
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
