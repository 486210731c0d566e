package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hookreg/internal/platform/config"
)

// Open opens the SQLite database named by cfg.Path and verifies the
// connection. ":memory:" is accepted for tests.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	if !isMemory(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	busy := cfg.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", path, busy)
	if !isMemory(path) {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection for SQLite. This also keeps ":memory:"
	// databases on one connection so every query sees the same data.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
