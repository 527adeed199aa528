// Package db stores pipeline runs in SQLite: the run parameters and
// counters, every cleaned position with its cluster label, and the
// per-cluster summaries.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/aismap/internal/monitoring"
	"github.com/banshee-data/aismap/internal/timeutil"
)

// DB wraps the SQLite handle of a run database.
type DB struct {
	*sql.DB

	// Clock stamps runs recorded without a CreatedAt.
	Clock timeutil.Clock
}

// NewDB opens (creating if needed) the database at path and applies any
// pending migrations. ":memory:" opens a private in-memory database.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}

	db := &DB{DB: sqlDB, Clock: timeutil.RealClock{}}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	version, _, _ := db.MigrateVersion()
	monitoring.Logf("[store] opened %s at schema version %d", path, version)
	return db, nil
}
