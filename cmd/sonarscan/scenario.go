package main

import (
	"fmt"

	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/internal/parser"
	"github.com/hydrocamel/sonarscan/internal/scan"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

// scenarioFlags holds the command-line overrides for the configured scenario.
type scenarioFlags struct {
	targetsFile string
	cells       string
	course      string
}

// buildScenario turns the configured scenario plus flag overrides into an engine
// config. Targets come from, in order of precedence: -targets, -cells, the config
// file, the config's cell list, then a random map when a density is set.
func buildScenario(sc config.ScenarioConfig, fl scenarioFlags) (scan.Config, scan.Strategy, error) {
	cfg := scan.Config{
		Range:     sc.Range,
		HalfAngle: sc.HalfAngle,
		Rows:      sc.Rows,
		Cols:      sc.Cols,
		Start:     sc.Start,
		Course:    sc.Course,
	}

	strategy, err := scan.ParseStrategy(sc.Strategy)
	if err != nil {
		return cfg, strategy, err
	}

	if fl.course != "" {
		course, err := parser.ParseCourse(fl.course)
		if err != nil {
			return cfg, strategy, fmt.Errorf("--course: %w", err)
		}
		cfg.Course = course
	}

	cfg.Targets, err = loadTargets(sc, fl)
	if err != nil {
		return cfg, strategy, err
	}
	return cfg, strategy, nil
}

func loadTargets(sc config.ScenarioConfig, fl scenarioFlags) ([][]uint8, error) {
	switch {
	case fl.targetsFile != "":
		return parser.LoadTargetMap(fl.targetsFile)
	case fl.cells != "":
		cells, err := parser.ParseCells(fl.cells)
		if err != nil {
			return nil, fmt.Errorf("--cells: %w", err)
		}
		return parser.TargetMapFromCells(sc.Rows, sc.Cols, cells)
	case sc.TargetsFile != "":
		return parser.LoadTargetMap(sc.TargetsFile)
	case len(sc.Targets) > 0:
		return parser.TargetMapFromCells(sc.Rows, sc.Cols, sc.Targets)
	case sc.TargetDensity > 0:
		return parser.RandomTargetMap(sc.Rows, sc.Cols, sc.TargetDensity, sc.Seed), nil
	default:
		return parser.TargetMapFromCells(sc.Rows, sc.Cols, nil)
	}
}

// newMission builds the mission record for a validated scenario.
func newMission(sc config.ScenarioConfig, cfg scan.Config) *core.Mission {
	return &core.Mission{
		MissionName:    sc.Name,
		Tag:            sc.Tag,
		SonarRange:     cfg.Range,
		SonarHalfAngle: cfg.HalfAngle,
		Rows:           cfg.Rows,
		Cols:           cfg.Cols,
		Start:          cfg.Start,
		Course:         cfg.Course,
		TargetCount:    cfg.TargetCount(),
	}
}
