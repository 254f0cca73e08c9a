package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/welldanyogia/postoffice/internal/config"
	"github.com/welldanyogia/postoffice/internal/database"
	"github.com/welldanyogia/postoffice/internal/kvstore"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/repository"
	"gorm.io/gorm"
)

// engine is the store and the repositories every command runs on
type engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    kvstore.Store
	messages repository.MessageRepository
	folders  repository.FolderRepository
	db       *gorm.DB
}

// openEngine loads configuration and opens the configured store
func openEngine(c *cli.Context) (*engine, error) {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	e := &engine{cfg: cfg, logger: log}
	if cfg.DatabaseDriver == config.DriverMemory {
		log.Warn("using the in-memory store; data is lost on exit")
		e.store = kvstore.NewMemoryStore(cfg.StoreOptions())
	} else {
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.AppEnv)
		if err != nil {
			return nil, err
		}
		e.db = db
		if err := database.Migrate(db); err != nil {
			e.Close()
			return nil, err
		}
		e.store = kvstore.NewGormStore(db, cfg.StoreOptions())
	}

	e.messages = repository.NewMessageRepository(e.store)
	e.folders = repository.NewFolderRepository(e.store)
	return e, nil
}

// Close releases the database connection, if any
func (e *engine) Close() {
	if e.db == nil {
		return
	}
	if err := database.Close(e.db); err != nil {
		e.logger.Error("failed to close database", slog.Any("error", err))
	}
}
