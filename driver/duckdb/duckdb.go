// Package duckdb registers the DuckDB database/sql driver for DuckDB models.
package duckdb

import (
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/prorochestvo/rawl"
	"github.com/prorochestvo/rawl/db"
)

// Open opens the DuckDB database at path; an empty path is an in-memory database.
func Open(path string, options ...rawl.Option) (*rawl.Connection, error) {
	return rawl.OpenDialect(db.DuckDB, path, options...)
}
