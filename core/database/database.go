package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	libsql "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Handles is the explicit database context for one pipeline run: the local
// embedded database (an embedded replica when a remote is configured), the
// replica connector used for sync, and a direct remote connection used only
// for watermark validation. It replaces any ambient global handle; open it
// at cycle start and close it at cycle end.
type Handles struct {
	// DB is the gorm handle over the local file. With a replica configured,
	// reads are served locally and writes are forwarded to the primary.
	DB *gorm.DB

	connector *libsql.Connector
	remote    *sql.DB
	cfg       Config
	log       *zap.Logger
}

// Open establishes the database handles described by cfg.
func Open(cfg Config, log *zap.Logger) (*Handles, error) {
	h := &Handles{cfg: cfg, log: log}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	if cfg.ReplicaURL == "" {
		// Purely local database, no replication.
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open local database %s: %w", cfg.Path, err)
		}
		h.DB = db
		return h, nil
	}

	connector, err := libsql.NewEmbeddedReplicaConnector(cfg.Path, cfg.ReplicaURL,
		libsql.WithAuthToken(cfg.AuthToken))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded replica %s: %w", cfg.Path, err)
	}
	h.connector = connector

	local := sql.OpenDB(connector)
	db, err := gorm.Open(sqlite.Dialector{Conn: local}, gormConfig)
	if err != nil {
		connector.Close()
		return nil, fmt.Errorf("failed to open gorm over replica %s: %w", cfg.Path, err)
	}
	h.DB = db

	remote, err := sql.Open("libsql", cfg.ReplicaURL+"?authToken="+cfg.AuthToken)
	if err != nil {
		connector.Close()
		return nil, fmt.Errorf("failed to open remote replica %s: %w", cfg.ReplicaURL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := remote.PingContext(ctx); err != nil {
		remote.Close()
		connector.Close()
		return nil, fmt.Errorf("failed to ping remote replica: %w", err)
	}
	h.remote = remote

	return h, nil
}

// Close releases every handle.
func (h *Handles) Close() error {
	var firstErr error

	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if h.remote != nil {
		if err := h.remote.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.connector != nil {
		if err := h.connector.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remote exposes the direct remote connection. Nil without a replica.
func (h *Handles) Remote() *sql.DB {
	return h.remote
}
