package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/hydrocamel/sonarscan/internal/api"
	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/internal/logging"
	"github.com/hydrocamel/sonarscan/internal/storage"
	"github.com/hydrocamel/sonarscan/internal/storage/memory"
	pgstorage "github.com/hydrocamel/sonarscan/internal/storage/postgres"
	sqlitestorage "github.com/hydrocamel/sonarscan/internal/storage/sqlite"
	wsstorage "github.com/hydrocamel/sonarscan/internal/storage/websocket"
)

// streamPath is the results server endpoint for live recordings.
const streamPath = "/api/v1/stream"

func createStorageBackend(storageCfg config.StorageConfig, logManager *logging.SlogManager, logOut io.Writer, logLevel string, sessionStart time.Time) (storage.Backend, error) {
	logger := logManager.Logger()

	switch storageCfg.Type {
	case "postgres":
		logger.Info("Postgres storage backend selected")
		return pgstorage.New(
			config.GetDBConfig(),
			logging.NewZerolog(logOut, logLevel, "database"),
			logManager,
		), nil

	case "sqlite":
		dumpPath := storageCfg.SQLite.Path
		if dumpPath == "" {
			dumpPath = filepath.Join(storageCfg.Memory.OutputDir, fmt.Sprintf("sonarscan_%s.db", sessionStart.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, logManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend selected", "dumpPath", dumpPath)
		return backend, nil

	case "websocket":
		apiCfg := config.GetAPIConfig()
		if apiCfg.ServerURL == "" {
			return nil, fmt.Errorf("websocket storage requires api.serverUrl")
		}
		wsURL := httpToWS(apiCfg.ServerURL) + streamPath
		logger.Info("WebSocket storage backend selected", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: apiCfg.APIKey,
		}, logger), nil

	case "memory", "":
		logger.Info("Memory storage backend selected", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// uploadRecording sends the exported file to the results server when the backend
// produced one and a server is configured.
func uploadRecording(backend storage.Backend, apiCfg config.APIConfig, logManager *logging.SlogManager) error {
	u, ok := backend.(storage.Uploadable)
	if !ok || apiCfg.ServerURL == "" {
		return nil
	}
	path := u.GetExportedFilePath()
	if path == "" {
		return nil
	}

	client := api.New(apiCfg.ServerURL, apiCfg.APIKey)
	if err := client.Healthcheck(); err != nil {
		return fmt.Errorf("results server unavailable: %w", err)
	}
	if err := client.Upload(path, u.GetExportMetadata()); err != nil {
		return err
	}
	logManager.Logger().Info("Uploaded recording", "path", path, "server", apiCfg.ServerURL)
	return nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
