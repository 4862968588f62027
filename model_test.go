package rawl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prorochestvo/rawl/db"
	"github.com/prorochestvo/rawl/internal/fixture"
)

func openFixture(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open("sqlite3://"+fixture.Path(t), WithConnectionLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newStates(t *testing.T, conn *Connection) *Model {
	t.Helper()
	m, err := New(conn, "state", fixture.StateColumns)
	require.NoError(t, err)
	return m
}

func newRawl(t *testing.T, conn *Connection) *Model {
	t.Helper()
	m, err := New(conn, "rawl", fixture.RawlColumns)
	require.NoError(t, err)
	return m
}

func TestModelSelect(t *testing.T) {
	ctx := context.Background()
	states := newStates(t, openFixture(t))

	t.Run("column subset", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0}\nFROM state\nWHERE state_id = {1};", []string{"name"}, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Oregon", rows[0].At(0))
		assert.Equal(t, "Oregon", rows[0].Value("name"))
		assert.Equal(t, []string{"name"}, rows[0].Columns())
	})

	t.Run("model columns", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0} FROM state WHERE name = {1};", states.Columns(), "Oregon")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(1), rows[0].Value("state_id"))
		assert.Equal(t, "Oregon", rows[0].Value("name"))
	})

	t.Run("dotted columns", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0} FROM state s WHERE s.state_id = {1};", []string{"s.state_id", "s.name"}, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Oregon", rows[0].Value("s_name"))
		assert.Equal(t, "Oregon", rows[0].Value("s.name"))
		assert.Equal(t, []string{"s_state_id", "s_name"}, rows[0].Columns())
	})

	t.Run("no rows", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0} FROM state WHERE state_id = {1};", []string{"name"}, 99)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("repeated columns", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0} FROM state WHERE state_id = {1};", []string{"name", "state_id", "name"}, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"name", "state_id"}, rows[0].Columns())
		assert.Equal(t, int64(1), rows[0].Value("state_id"))
	})

	t.Run("template mismatch", func(t *testing.T) {
		rows, err := states.Select(ctx, "SELECT {0} FROM state WHERE state_id = {1};", []string{"name"})
		assert.ErrorIs(t, err, ErrTemplateMismatch)
		assert.Nil(t, rows)
	})

	t.Run("invalid column", func(t *testing.T) {
		_, err := states.Select(ctx, "SELECT {0} FROM state;", []string{"name; DROP TABLE state"})
		assert.ErrorIs(t, err, ErrInvalidColumn)
	})
}

func TestModelQuery(t *testing.T) {
	ctx := context.Background()
	states := newStates(t, openFixture(t))

	rows, err := states.Query(ctx, "SELECT state_id, name FROM state WHERE state_id = {0};", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Value("state_id"))
	assert.Equal(t, "Oregon", rows[0].Value("name"))

	rows, err = states.QueryAs(ctx, []string{"total"}, "SELECT COUNT(*) FROM state;")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Value("total"))

	_, err = states.Query(ctx, "SELECT name FROM state WHERE state_id = {0};")
	assert.ErrorIs(t, err, ErrTemplateMismatch)

	_, err = states.Query(ctx, "SELECT name FROM missing_table;")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTemplateMismatch))
}

func TestModelExec(t *testing.T) {
	ctx := context.Background()
	m := newRawl(t, openFixture(t))

	affected, err := m.Exec(ctx, "UPDATE rawl SET name = {0} WHERE rawl_id > {1};", "renamed", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	rows, err := m.Query(ctx, "SELECT rawl_id, stamp, name FROM rawl WHERE name = {0};", "renamed")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestModelCRUD(t *testing.T) {
	ctx := context.Background()
	m := newRawl(t, openFixture(t))

	rows, err := m.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "I am row one.", rows[0].Value("name"))

	pk, err := m.InsertMap(ctx, map[string]interface{}{"name": "I am row five."})
	require.NoError(t, err)
	assert.Equal(t, int64(5), pk)

	row, err := m.Get(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, "I am row five.", row.Value("name"))
	assert.NotNil(t, row.Value("stamp"))

	row, err = m.Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, int64(5), row.Value("rawl_id"))

	affected, err := m.UpdateMap(ctx, pk, map[string]interface{}{"name": "I was row five."})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	row, err = m.Get(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, "I was row five.", row.Value("name"))

	affected, err = m.Delete(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = m.Get(ctx, pk)
	assert.ErrorIs(t, err, ErrNotFound)

	affected, err = m.Delete(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	pk, err = m.InsertMap(ctx, nil)
	require.NoError(t, err)
	row, err = m.Get(ctx, pk)
	require.NoError(t, err)
	assert.Nil(t, row.Value("name"))

	_, err = m.InsertMap(ctx, map[string]interface{}{"missing": 1})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = m.UpdateMap(ctx, pk, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestModelTransaction(t *testing.T) {
	ctx := context.Background()
	m := newRawl(t, openFixture(t))

	assert.ErrorIs(t, m.Commit(), ErrNoTransaction)
	assert.ErrorIs(t, m.Rollback(), ErrNoTransaction)

	require.NoError(t, m.Begin(ctx))
	assert.True(t, m.InTransaction())
	_, err := m.InsertMap(ctx, map[string]interface{}{"name": "rolled back"})
	require.NoError(t, err)
	require.NoError(t, m.Rollback())
	assert.False(t, m.InTransaction())

	rows, err := m.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	require.NoError(t, m.Begin(ctx))
	_, err = m.InsertMap(ctx, map[string]interface{}{"name": "committed"})
	require.NoError(t, err)
	require.NoError(t, m.Commit())

	rows, err = m.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestModelMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(":memory:", WithConnectionLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	defer conn.Close()

	states := newStates(t, conn)
	_, err = states.Exec(ctx, "CREATE TABLE state (state_id INTEGER PRIMARY KEY, name TEXT NOT NULL);")
	require.NoError(t, err)
	_, err = states.InsertMap(ctx, map[string]interface{}{"state_id": 1, "name": "Oregon"})
	require.NoError(t, err)

	require.NoError(t, states.Begin(ctx))
	defer states.Rollback()
	rows, err := states.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	other := newStates(t, conn)
	rows, err = other.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Oregon", rows[0].Value("name"))

	separate, err := Open(":memory:")
	require.NoError(t, err)
	defer separate.Close()
	_, err = newStates(t, separate).All(ctx)
	assert.Error(t, err)
}

func TestModelBeginOnCallerTransaction(t *testing.T) {
	ctx := context.Background()
	conn := openFixture(t)
	m := newRawl(t, conn)

	err := conn.Scope(ctx, func(c *Conn) error {
		require.NoError(t, c.Begin(ctx))
		bound := m.On(c)

		assert.ErrorIs(t, bound.Begin(ctx), ErrTransactionOpen)
		assert.False(t, bound.InTransaction())
		assert.ErrorIs(t, bound.Rollback(), ErrNoTransaction)
		assert.True(t, c.InTransaction())

		_, err := bound.InsertMap(ctx, map[string]interface{}{"name": "inside the caller's transaction"})
		require.NoError(t, err)
		return c.Rollback()
	})
	require.NoError(t, err)

	rows, err := m.All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestModelInsertSkipped(t *testing.T) {
	ctx := context.Background()
	m := newRawl(t, openFixture(t))

	_, err := m.Exec(ctx, "CREATE TRIGGER rawl_skip BEFORE INSERT ON rawl BEGIN SELECT RAISE(IGNORE); END;")
	require.NoError(t, err)

	pk, err := m.InsertMap(ctx, map[string]interface{}{"name": "never stored"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, pk)
}

func TestModelOn(t *testing.T) {
	ctx := context.Background()
	conn := openFixture(t)
	m := newRawl(t, conn)

	failure := errors.New("failure")
	err := conn.Scope(ctx, func(c *Conn) error {
		bound := m.On(c)
		if err := bound.Begin(ctx); err != nil {
			return err
		}
		if _, err := bound.Delete(ctx, 1); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.False(t, m.InTransaction())

	_, err = m.Get(ctx, 1)
	assert.NoError(t, err)
}

func TestModelClosedConnection(t *testing.T) {
	ctx := context.Background()
	conn := openFixture(t)
	m := newStates(t, conn)
	require.NoError(t, conn.Close())

	rows, err := m.All(ctx)
	require.Error(t, err)
	assert.Nil(t, rows)
	for _, kind := range []error{ErrInvalidColumn, ErrTemplateMismatch, ErrInvalidDSN, ErrNotFound, ErrNoTransaction, ErrTransactionOpen} {
		assert.False(t, errors.Is(err, kind))
	}

	_, err = m.Select(ctx, "SELECT {0} FROM state WHERE state_id = {1};", []string{"name"})
	assert.ErrorIs(t, err, ErrTemplateMismatch)
}

func TestNew(t *testing.T) {
	conn := openFixture(t)

	m, err := New(conn, "state", "state_id, name", WithPrimaryKey("state_id"))
	require.NoError(t, err)
	assert.Equal(t, "state", m.Table())
	assert.Equal(t, "state_id", m.PrimaryKey())
	assert.Equal(t, []string{"state_id", "name"}, m.Columns())
	assert.Same(t, conn, m.Connection())

	m, err = New(conn, "state", db.Enum{{Name: "ID", Column: "state_id"}, {Name: "name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"state_id", "name"}, m.Columns())

	m, err = New(conn, "state", []interface{}{"name", db.Column("state_id")}, WithPrimaryKey("state_id"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "state_id"}, m.Columns())
	assert.Equal(t, "state_id", m.PrimaryKey())

	for _, columns := range []interface{}{[]string{}, "", []string{"a", "a"}, []string{"a b"}, 42} {
		_, err := New(conn, "state", columns)
		assert.ErrorIsf(t, err, ErrInvalidColumn, "%#v", columns)
	}

	_, err = New(conn, "bad table", []string{"a"})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = New(conn, "state", []string{"a"}, WithPrimaryKey("1pk"))
	assert.ErrorIs(t, err, ErrInvalidColumn)
}
