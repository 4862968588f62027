package db

import (
	"context"
	"database/sql"
)

// Driver is the part of database/sql a statement runs against. *sql.DB,
// *sql.Conn and *sql.Tx all satisfy it.
type Driver interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
