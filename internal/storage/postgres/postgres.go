// Package postgres implements the storage.Backend interface on PostgreSQL. It opens
// the connection on Init and delegates recording to the GORM backend.
package postgres

import (
	"fmt"

	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/internal/database"
	"github.com/hydrocamel/sonarscan/internal/logging"
	gormstorage "github.com/hydrocamel/sonarscan/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Backend records to PostgreSQL through the GORM backend.
type Backend struct {
	*gormstorage.Backend
	cfg     config.DBConfig
	manager *database.Manager
	log     *logging.SlogManager
}

// New creates a PostgreSQL backend. Nothing is opened until Init.
func New(cfg config.DBConfig, logger zerolog.Logger, logManager *logging.SlogManager) *Backend {
	return &Backend{
		cfg:     cfg,
		manager: database.NewManager(logger),
		log:     logManager,
	}
}

// Init connects, migrates and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := b.manager.ConnectPostgres(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         b.manager.DB,
		LogManager: b.log,
	})
	return b.Backend.Init()
}

// Close stops the writer and releases the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.manager.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
