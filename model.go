package rawl

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/prorochestvo/rawl/db"
	"github.com/prorochestvo/rawl/internal"
)

// Model binds a table and its ordered column list to a connection. The
// declared columns must match the table; rawl never checks the schema.
//
// A Model holding an open transaction must not be shared between goroutines;
// use On to give each goroutine its own copy.
type Model struct {
	conn    *Connection
	table   db.SQLTable
	columns []string
	layout  *layout
	linker  db.SQLLinker
	logger  *slog.Logger

	bound  *Conn
	tx     *Conn
	ownsTx bool
}

type ModelOption func(*modelOptions)

type modelOptions struct {
	primaryKey string
	logger     *slog.Logger
}

// WithPrimaryKey names the primary key column. It defaults to the first declared column.
func WithPrimaryKey(name string) ModelOption {
	return func(o *modelOptions) {
		o.primaryKey = name
	}
}

func WithLogger(logger *slog.Logger) ModelOption {
	return func(o *modelOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New declares a model. columns is a []string, a comma or whitespace
// separated string, a db.Enum or a []interface{} of column identifiers.
// Invalid or duplicate columns fail with ErrInvalidColumn.
func New(conn *Connection, table string, columns interface{}, options ...ModelOption) (*Model, error) {
	declared, err := declareColumns(columns)
	if err != nil {
		return nil, err
	}
	o := modelOptions{primaryKey: declared[0], logger: conn.Logger()}
	for _, option := range options {
		option(&o)
	}
	t, err := db.NewSQLTable(table, o.primaryKey)
	if err != nil {
		return nil, err
	}
	result := Model{}
	result.conn = conn
	result.table = t
	result.columns = declared
	result.layout = newLayout(declared)
	result.linker = db.NewSQLLinker(conn.Dialect())
	result.logger = o.logger.With("table", table)
	return &result, nil
}

func declareColumns(columns interface{}) ([]string, error) {
	var names []string
	switch c := columns.(type) {
	case []string:
		names = c
	case string:
		names = db.ParseColumns(c)
	case db.Enum:
		if err := c.Validate(); err != nil {
			return nil, err
		}
		names = c.Columns()
	case []interface{}:
		for _, item := range c {
			resolved, err := db.ResolveColumns(item)
			if err != nil {
				return nil, err
			}
			names = append(names, resolved...)
		}
	default:
		return nil, internal.NewError(internal.KindInvalidColumn, "unknown format for columns %T", columns)
	}
	if len(names) == 0 {
		return nil, internal.NewError(internal.KindInvalidColumn, "no columns declared")
	}
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if !db.IsIdentifier(name) {
			return nil, internal.NewError(internal.KindInvalidColumn, "%q is not a valid identifier", name)
		}
		if _, ok := seen[name]; ok {
			return nil, internal.NewError(internal.KindInvalidColumn, "column %q declared twice", name)
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result, nil
}

func (m *Model) Table() string {
	return m.table.Name()
}

func (m *Model) PrimaryKey() string {
	return m.table.PrimaryKey()
}

func (m *Model) Columns() []string {
	return append([]string(nil), m.columns...)
}

func (m *Model) Connection() *Connection {
	return m.conn
}

// On returns a copy of the model that runs every statement on conn. The copy
// starts without a transaction of its own.
func (m *Model) On(conn *Conn) *Model {
	result := *m
	result.bound = conn
	result.tx = nil
	result.ownsTx = false
	return &result
}

// Select runs template with {0} replaced by columns and {1}..{n} bound to args.
// Rows are keyed by columns.
func (m *Model) Select(ctx context.Context, template string, columns []string, args ...interface{}) ([]*Row, error) {
	resolved, err := db.ResolveColumns(columns)
	if err != nil {
		return nil, err
	}
	stmt, err := db.Assemble(m.conn.Dialect(), template, resolved, args...)
	if err != nil {
		return nil, err
	}
	return m.execute(ctx, stmt, m.layoutFor(stmt.Columns))
}

// Query runs template with {0}..{n-1} bound to args. Rows are keyed by the
// model's columns.
func (m *Model) Query(ctx context.Context, template string, args ...interface{}) ([]*Row, error) {
	stmt, err := db.AssembleSimple(m.conn.Dialect(), template, args...)
	if err != nil {
		return nil, err
	}
	return m.execute(ctx, stmt, m.layout)
}

// QueryAs is Query with rows keyed by columns instead of the model's columns.
func (m *Model) QueryAs(ctx context.Context, columns []string, template string, args ...interface{}) ([]*Row, error) {
	resolved, err := db.ResolveColumns(columns)
	if err != nil {
		return nil, err
	}
	stmt, err := db.AssembleSimple(m.conn.Dialect(), template, args...)
	if err != nil {
		return nil, err
	}
	return m.execute(ctx, stmt, m.layoutFor(resolved))
}

// Exec runs a statement that returns no rows and reports the rows affected.
func (m *Model) Exec(ctx context.Context, template string, args ...interface{}) (int64, error) {
	stmt, err := db.AssembleSimple(m.conn.Dialect(), template, args...)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, stmt)
}

// InsertMap inserts values keyed by column name and returns the new primary key.
// An insert the database skipped (e.g. by a trigger) returns ErrNotFound.
func (m *Model) InsertMap(ctx context.Context, values map[string]interface{}) (interface{}, error) {
	fields, err := db.SQLFields(m.columns, values)
	if err != nil {
		return nil, err
	}
	stmt, err := m.linker.Insert(m.table, fields)
	if err != nil {
		return nil, err
	}
	rows, err := m.execute(ctx, stmt, newLayout([]string{m.PrimaryKey()}))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.NewError(internal.KindNotFound, "insert into %s returned no %s", m.Table(), m.PrimaryKey())
	}
	return rows[0].At(0), nil
}

func (m *Model) UpdateMap(ctx context.Context, pk interface{}, values map[string]interface{}) (int64, error) {
	fields, err := db.SQLFields(m.columns, values)
	if err != nil {
		return 0, err
	}
	stmt, err := m.linker.Update(m.table, fields, primaryKey(pk))
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, stmt)
}

func (m *Model) Delete(ctx context.Context, pk interface{}) (int64, error) {
	stmt, err := m.linker.Delete(m.table, primaryKey(pk))
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, stmt)
}

// Get returns the row whose primary key equals pk, or ErrNotFound.
func (m *Model) Get(ctx context.Context, pk interface{}) (*Row, error) {
	stmt, err := m.linker.Get(m.table, m.columns, primaryKey(pk))
	if err != nil {
		return nil, err
	}
	rows, err := m.execute(ctx, stmt, m.layoutFor(stmt.Columns))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.NewError(internal.KindNotFound, "%s with %s = %v", m.Table(), m.PrimaryKey(), pk)
	}
	return rows[0], nil
}

func (m *Model) All(ctx context.Context) ([]*Row, error) {
	stmt, err := m.linker.All(m.table, m.columns)
	if err != nil {
		return nil, err
	}
	return m.execute(ctx, stmt, m.layoutFor(stmt.Columns))
}

// Begin opens a transaction the model's statements run in until Commit or
// Rollback. It uses the bound connection when there is one; a transaction the
// caller already opened on it is not taken over (ErrTransactionOpen).
func (m *Model) Begin(ctx context.Context) error {
	if m.tx != nil {
		return nil
	}
	conn, owned := m.bound, false
	if conn != nil && conn.InTransaction() {
		return internal.NewError(internal.KindTransactionOpen, "bound connection already runs a transaction")
	}
	if conn == nil {
		acquired, err := m.conn.Acquire(ctx)
		if err != nil {
			return err
		}
		conn, owned = acquired, true
	}
	if err := conn.Begin(ctx); err != nil {
		if owned {
			_ = conn.Release()
		}
		return err
	}
	m.tx = conn
	m.ownsTx = owned
	return nil
}

func (m *Model) InTransaction() bool {
	return m.tx != nil
}

func (m *Model) Commit() error {
	if m.tx == nil {
		m.logger.Warn("cannot commit, no open transaction")
		return internal.NewError(internal.KindNoTransaction, "commit")
	}
	err := m.tx.Commit()
	m.endTransaction()
	return err
}

func (m *Model) Rollback() error {
	if m.tx == nil {
		m.logger.Warn("cannot rollback, no open transaction")
		return internal.NewError(internal.KindNoTransaction, "rollback")
	}
	err := m.tx.Rollback()
	m.endTransaction()
	return err
}

func (m *Model) endTransaction() {
	if m.ownsTx {
		_ = m.tx.Release()
	}
	m.tx = nil
	m.ownsTx = false
}

func (m *Model) layoutFor(columns []string) *layout {
	if len(columns) != len(m.columns) {
		return newLayout(columns)
	}
	for i := range columns {
		if columns[i] != m.columns[i] {
			return newLayout(columns)
		}
	}
	return m.layout
}

// primaryKey converts a string key that looks like an integer.
func primaryKey(pk interface{}) interface{} {
	if s, ok := pk.(string); ok {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	return pk
}
