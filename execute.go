package rawl

import (
	"context"

	"github.com/google/uuid"

	"github.com/prorochestvo/rawl/db"
)

// driver picks what a statement runs on: the open transaction, then the bound
// connection. nil means a connection is taken from the pool for the call.
func (m *Model) driver() db.Driver {
	if m.tx != nil {
		return m.tx
	}
	if m.bound != nil {
		return m.bound
	}
	return nil
}

func (m *Model) run(ctx context.Context, fn func(db.Driver) error) error {
	if d := m.driver(); d != nil {
		return fn(d)
	}
	return m.conn.Scope(ctx, func(c *Conn) error {
		return fn(c)
	})
}

// execute runs stmt and maps every returned row onto l. Driver errors are
// returned as they are; a failure while reading discards the rows read so far.
func (m *Model) execute(ctx context.Context, stmt db.Statement, l *layout) ([]*Row, error) {
	logger := m.logger.With("query_id", uuid.Must(uuid.NewV7()).String())
	logger.Debug("executing", "statement", stmt)
	var result []*Row
	err := m.run(ctx, func(d db.Driver) error {
		rows, err := fetch(ctx, d, stmt, l)
		result = rows
		return err
	})
	if err != nil {
		logger.Error("exception occurred when executing query", "query", stmt.Query, "error", err)
		return nil, err
	}
	logger.Debug("executed", "rows", len(result))
	return result, nil
}

func (m *Model) exec(ctx context.Context, stmt db.Statement) (int64, error) {
	logger := m.logger.With("query_id", uuid.Must(uuid.NewV7()).String())
	logger.Debug("executing", "statement", stmt)
	var affected int64
	err := m.run(ctx, func(d db.Driver) error {
		res, err := d.ExecContext(ctx, stmt.Query, stmt.Args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.Error("exception occurred when executing query", "query", stmt.Query, "error", err)
		return 0, err
	}
	logger.Debug("executed", "rows_affected", affected)
	return affected, nil
}

func fetch(ctx context.Context, d db.Driver, stmt db.Statement, l *layout) ([]*Row, error) {
	rows, err := d.QueryContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	result := make([]*Row, 0)
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		result = append(result, newRow(l, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
