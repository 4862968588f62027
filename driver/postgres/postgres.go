// Package postgres registers the jackc/pgx database/sql driver for PostgreSQL models.
package postgres

import (
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx"
	_ "github.com/jackc/pgx/stdlib"

	"github.com/prorochestvo/rawl"
	"github.com/prorochestvo/rawl/db"
)

// Open opens a PostgreSQL connection from a URL or key=value connection string.
func Open(dsn string, options ...rawl.Option) (*rawl.Connection, error) {
	if _, err := pgx.ParseConnectionString(dsn); err != nil {
		return nil, err
	}
	return rawl.OpenDialect(db.Postgres, dsn, options...)
}

// OpenEnv opens a connection from the libpq environment (PGHOST, PGPORT,
// PGDATABASE, PGUSER, PGPASSWORD, ...).
func OpenEnv(options ...rawl.Option) (*rawl.Connection, error) {
	config, err := pgx.ParseEnvLibpq()
	if err != nil {
		return nil, err
	}
	conn, err := rawl.OpenDialect(db.Postgres, dsnOf(config), options...)
	if err != nil {
		return nil, err
	}
	conn.Logger().Debug("postgres connection from environment", "host", config.Host, "port", config.Port, "database", config.Database)
	return conn, nil
}

// dsnOf renders config back into a postgres:// URL.
func dsnOf(config pgx.ConnConfig) string {
	u := url.URL{Scheme: "postgres", Path: "/" + config.Database}
	u.Host = config.Host
	if config.Port != 0 {
		u.Host = net.JoinHostPort(config.Host, strconv.Itoa(int(config.Port)))
	}
	if len(config.Password) > 0 {
		u.User = url.UserPassword(config.User, config.Password)
	} else if len(config.User) > 0 {
		u.User = url.User(config.User)
	}
	if config.TLSConfig == nil {
		u.RawQuery = "sslmode=disable"
	}
	return u.String()
}
