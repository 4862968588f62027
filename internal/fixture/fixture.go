// Package fixture seeds SQLite databases with the demo schema used by tests
// and by the "rawl fixture" command.
//
// Tables:
//   - state(state_id, name) with the row (1, 'Oregon')
//   - rawl(rawl_id, stamp, name) with four rows
package fixture

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// Column lists of the seeded tables, in declaration order.
var (
	StateColumns = []string{"state_id", "name"}
	RawlColumns  = []string{"rawl_id", "stamp", "name"}
)

// Apply runs every pending fixture migration against a SQLite database.
func Apply(db *sql.DB) error {
	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Path creates a seeded SQLite file in a per-test directory and returns its path.
func Path(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rawl_test.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("fixture: open %s: %v", path, err)
	}
	defer db.Close()

	if err := Apply(db); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return path
}
