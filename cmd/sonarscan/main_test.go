package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string, overrides map[string]any) {
	t.Helper()
	cfg := map[string]any{
		"logsDir": filepath.Join(dir, "logs"),
		"render":  map[string]any{"mode": "none"},
		"storage": map[string]any{
			"type":   "memory",
			"memory": map[string]any{"outputDir": filepath.Join(dir, "recordings"), "compressOutput": true},
		},
		"scenario": map[string]any{
			"name":    "Harbour approach",
			"targets": [][]int{{14, 7}, {2, 6}},
		},
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sonarscan.cfg.json"), data, 0644))
}

func TestRun_ExampleScenario(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", dir}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "steps: 8, targets found: 1 of 2\n  (14,7)\n", stdout.String())

	exports, err := filepath.Glob(filepath.Join(dir, "recordings", "Harbour_approach_*.json.gz"))
	require.NoError(t, err)
	assert.Len(t, exports, 1)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", "sonarscan.*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRun_FlagsOverrideScenario(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", dir, "--cells", "16,6;2,6", "--course", "0,1x3"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "steps: 3, targets found: 1 of 2\n  (16,6)\n", stdout.String())
}

func TestRun_TextDisplay(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", dir, "--render", "text", "--course", "0,1x1"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "A")
	assert.Contains(t, stdout.String(), "targets found")
}

func TestRun_InvalidScenarioExitsWithError(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, map[string]any{
		"scenario": map[string]any{"halfAngle": 120},
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", dir}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "halfAngle")
	assert.Empty(t, stdout.String())
}

func TestRun_UnknownStorage(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfig(t, dir, nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", dir, "--storage", "tape"}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "unknown storage type")
}

func TestRun_BadFlag(t *testing.T) {
	viper.Reset()
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"--no-such-flag"}, &stdout, &stderr))
}
