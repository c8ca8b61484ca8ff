// Command sonarscan runs a sonar mine-scan survey over a grid map, displays each
// step and records the run to the configured storage backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/internal/dispatcher"
	"github.com/hydrocamel/sonarscan/internal/geo"
	"github.com/hydrocamel/sonarscan/internal/influx"
	"github.com/hydrocamel/sonarscan/internal/logging"
	"github.com/hydrocamel/sonarscan/internal/mission"
	"github.com/hydrocamel/sonarscan/internal/monitor"
	intOtel "github.com/hydrocamel/sonarscan/internal/otel"
	"github.com/hydrocamel/sonarscan/internal/render"
	"github.com/hydrocamel/sonarscan/internal/scan"
	"github.com/hydrocamel/sonarscan/internal/worker"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildVersion can be set at build time via ldflags
var BuildVersion = "0.0.1"

const (
	exitOK     = 0
	exitError  = 1
	exitUsage  = 2
	shutdownTO = 5 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app holds everything a run opens so it can be torn down in reverse order.
type app struct {
	sessionStart time.Time
	stdout       io.Writer
	stderr       io.Writer

	logFile     *os.File
	slogManager *logging.SlogManager
	logger      *slog.Logger
	otel        *intOtel.Provider
	gelf        *logging.GelfSink
	influx      *influx.Manager
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("sonarscan", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	var sf scenarioFlags
	fs.StringVar(&sf.targetsFile, "targets", "", "target map file (one row per line, 0/1 cells)")
	fs.StringVar(&sf.cells, "cells", "", `target cells, e.g. "14,7;16,6"`)
	fs.StringVar(&sf.course, "course", "", `course segments, e.g. "0,1x8;2,2x2"`)
	fs.String("render", "", "display mode: text, png or none")
	fs.String("storage", "", "storage backend: memory, sqlite, postgres or websocket")
	quiet := fs.Bool("quiet", false, "disable the per-step display")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	a := &app{sessionStart: time.Now(), stdout: stdout, stderr: stderr}

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(stderr, "Failed to load config, using defaults: %v\n", err)
	}
	_ = viper.BindPFlag("render.mode", fs.Lookup("render"))
	_ = viper.BindPFlag("storage.type", fs.Lookup("storage"))

	a.setupLogging()
	defer a.shutdown()

	if err := a.scan(sf, *quiet); err != nil {
		a.logger.Error("Scan failed", "error", err)
		fmt.Fprintf(stderr, "sonarscan: %v\n", err)
		return exitError
	}
	return exitOK
}

// setupLogging opens the run's log file and wires OTel and Graylog when enabled.
func (a *app) setupLogging() {
	level := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")

	a.slogManager = logging.NewSlogManager()

	if f, err := logging.OpenLogFile(logsDir, "sonarscan", a.sessionStart); err != nil {
		fmt.Fprintf(a.stderr, "Failed to set up log file: %v\n", err)
	} else {
		a.logFile = f
	}

	otelCfg := config.GetOTelConfig()
	var otelLogProvider *sdklog.LoggerProvider
	if otelCfg.Enabled {
		p, err := intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    a.logWriter(),
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			fmt.Fprintf(a.stderr, "Failed to initialize OTel provider: %v\n", err)
		} else {
			a.otel = p
			otelLogProvider = p.LoggerProvider()
		}
	}

	var extra []slog.Handler
	if gl := config.GetGraylogConfig(); gl.Enabled {
		sink, err := logging.NewGelfSink(gl.Address, level)
		if err != nil {
			fmt.Fprintf(a.stderr, "Failed to connect to Graylog: %v\n", err)
		} else {
			a.gelf = sink
			extra = append(extra, sink.Handler())
		}
	}

	var file io.Writer
	if a.logFile != nil {
		file = a.logFile
	}
	a.slogManager.Setup(file, level, otelLogProvider, extra...)
	a.logger = a.slogManager.Logger()
	a.logger.Info("Starting sonarscan", "version", BuildVersion)
}

// logWriter is where zerolog and OTel file output go.
func (a *app) logWriter() io.Writer {
	if a.logFile != nil {
		return a.logFile
	}
	return a.stderr
}

func (a *app) scan(sf scenarioFlags, quiet bool) error {
	sc, err := config.GetScenarioConfig()
	if err != nil {
		return err
	}
	cfg, strategy, err := buildScenario(sc, sf)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	missionCtx := mission.NewContext()
	a.slogManager.GetMissionName = func() string { return missionCtx.GetMission().MissionName }
	a.slogManager.GetMissionID = func() uint { return missionCtx.GetMission().ID }
	a.slogManager.GetStep = missionCtx.Step

	level := viper.GetString("logLevel")
	backend, err := createStorageBackend(config.GetStorageConfig(), a.slogManager, a.logWriter(), level, a.sessionStart)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			a.logger.Warn("Failed to close storage backend", "error", err)
		}
	}()

	m := newMission(sc, cfg)
	m.StartTime = a.sessionStart
	if err := backend.StartMission(m); err != nil {
		return fmt.Errorf("failed to start mission: %w", err)
	}
	missionCtx.SetMission(m)
	a.logger.Info("Mission started", "targets", m.TargetCount, "strategy", strategy.String())

	d, err := dispatcher.New(logging.NewDispatcherLogger(logging.NewZerolog(a.logWriter(), level, "dispatcher")))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := worker.Dependencies{LogManager: a.slogManager, MissionContext: missionCtx}
	if tel := a.connectInflux(level); tel != nil {
		deps.Telemetry = tel
	}
	workerManager := worker.NewManager(deps, backend)
	workerManager.RegisterHandlers(d)

	monitorDeps := monitor.Dependencies{
		LogManager:     a.slogManager,
		MissionContext: missionCtx,
		WriteDuration:  workerManager,
		StatusPath:     filepath.Join(viper.GetString("logsDir"), "status.json"),
	}
	if q, ok := backend.(monitor.QueueReporter); ok {
		monitorDeps.Queues = q
	}
	if a.influx != nil {
		monitorDeps.Telemetry = a.influx
	}
	statusMonitor := monitor.NewService(monitorDeps)
	statusMonitor.Start()
	defer statusMonitor.Stop()

	var recorderOpts []worker.RecorderOption
	if gc := config.GetGeoConfig(); gc.Enabled {
		g, err := geo.NewGeoreference(gc.OriginLon, gc.OriginLat, gc.CellSize)
		if err != nil {
			d.Close()
			return fmt.Errorf("geo: %w", err)
		}
		recorderOpts = append(recorderOpts, worker.WithGeoreference(g))
	}
	renderers := []scan.Renderer{worker.NewRecorder(d, missionCtx, recorderOpts...)}

	if !quiet {
		display, err := a.display(sc.Name)
		if err != nil {
			d.Close()
			return err
		}
		if display != nil {
			renderers = append(renderers, display)
		}
	}

	engine, err := scan.New(cfg,
		scan.WithLogger(a.logger),
		scan.WithRenderer(render.Multi(renderers...)),
		scan.WithScanStrategy(strategy),
		scan.WithMissionName(sc.Name),
	)
	if err != nil {
		d.Close()
		return err
	}

	// Step 0 is the pose at construction; Run only renders the steps it takes.
	if err := engine.Render(); err != nil {
		a.logger.Warn("render failed", "step", 0, "error", err)
	}
	steps := engine.Run()

	d.Close()
	if err := backend.EndMission(); err != nil {
		return fmt.Errorf("failed to end mission: %w", err)
	}
	if err := uploadRecording(backend, config.GetAPIConfig(), a.slogManager); err != nil {
		a.logger.Warn("Upload failed", "error", err)
	}

	targets := engine.Targets()
	fmt.Fprintf(a.stdout, "steps: %d, targets found: %d of %d\n", steps, len(targets), m.TargetCount)
	for _, c := range targets {
		fmt.Fprintf(a.stdout, "  %s\n", c)
	}
	return nil
}

// display returns the configured per-step display, or nil for "none".
func (a *app) display(title string) (scan.Renderer, error) {
	rc := config.GetRenderConfig()
	switch rc.Mode {
	case "text", "":
		return render.NewText(a.stdout), nil
	case "png":
		p, err := render.NewPlot(rc.OutputDir, title)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Writing frames", "dir", p.Dir())
		return p, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown render mode %q", rc.Mode)
	}
}

// connectInflux returns the telemetry sink, or nil when disabled or unusable.
func (a *app) connectInflux(level string) worker.Telemetry {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	m := influx.NewManager(logging.NewZerolog(a.logWriter(), level, "influx"))
	if err := m.Connect(cfg); err != nil {
		a.logger.Warn("InfluxDB telemetry disabled", "error", err)
		return nil
	}
	a.influx = m
	return m
}

func (a *app) shutdown() {
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTO)
	defer cancel()
	if err := a.slogManager.Flush(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Failed to flush logs: %v\n", err)
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			fmt.Fprintf(a.stderr, "Failed to shut down OTel: %v\n", err)
		}
	}
	if a.gelf != nil {
		_ = a.gelf.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
