package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/hydrocamel/sonarscan/internal/storage/memory/export/v1"
	"github.com/hydrocamel/sonarscan/pkg/core"
)

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_")

// exportJSON writes the mission data to a JSON file, gzipped when configured.
// Callers hold the lock.
func (b *Backend) exportJSON() error {
	export := v1.Build(&v1.MissionData{
		Mission:     b.mission,
		Frames:      b.frames,
		Discoveries: b.discoveries,
	})

	missionName := fileNameReplacer.Replace(b.mission.MissionName)
	timestamp := b.mission.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", missionName, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.lastExportMetadata = core.UploadMetadata{
		MissionName:     b.mission.MissionName,
		MissionDuration: float64(export.EndFrame),
		Tag:             b.mission.Tag,
		TargetsFound:    len(export.Targets),
	}
	return nil
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return f.Close()
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return f.Close()
}
