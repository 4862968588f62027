// Package sqlite3 registers the mattn/go-sqlite3 driver for SQLite models.
package sqlite3

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prorochestvo/rawl"
	"github.com/prorochestvo/rawl/db"
)

const pragmas = "_foreign_keys=on&_busy_timeout=5000"

// Open opens the SQLite database at path, creating the file when needed.
// Foreign keys are enforced and writers wait up to five seconds on a lock.
// ":memory:" opens an in-memory database shared by the pool's connections.
func Open(path string, options ...rawl.Option) (*rawl.Connection, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("sqlite3: %w", db.ErrInvalidDSN)
	}
	if path == ":memory:" {
		return rawl.OpenDialect(db.SQLite, db.SQLiteMemory()+"&"+pragmas, options...)
	}
	return rawl.OpenDialect(db.SQLite, fmt.Sprintf("file:%s?%s", path, pragmas), options...)
}
