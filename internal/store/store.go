package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"postStreakAPI/internal/types/leaderboard"
	"postStreakAPI/internal/types/streak"
)

//go:embed schema.sql
var schemaSQL string

// StreakStore is the persistence contract the services consume. The concrete
// store is injected at startup; nothing holds a package-level handle.
type StreakStore interface {
	GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error)
	UpdateStreak(ctx context.Context, userID string, apply func(current *streak.UserStreak) (*streak.UserStreak, bool)) (*streak.UserStreak, bool, error)
	DeleteLapsed(ctx context.Context, oldestKept time.Time) (int64, error)
	ListByScore(ctx context.Context) ([]*leaderboard.Entry, error)
	CountScoresAbove(ctx context.Context, score int) (int, error)
	BackupTo(ctx context.Context, destPath string) error
	Close() error
}

// Store persists streak rows in a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at the given path and applies the
// schema. SQLite supports one writer at a time, so the pool is pinned to a
// single connection; the streak workload is small enough that this never hurts.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Ping verifies the database connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
