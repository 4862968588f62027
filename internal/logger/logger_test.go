package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for value, expected := range cases {
		level, err := ParseLevel(value)
		require.NoError(t, err, value)
		assert.Equal(t, expected, level, value)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	buf := bytes.Buffer{}
	l, err := New("warn", &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "table", "state")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown table=state")

	_, err = New("loud", &buf)
	assert.Error(t, err)
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w := NewFileWriter(dir)
	w.now = func() time.Time {
		return time.Date(2020, 5, 17, 23, 59, 0, 0, time.UTC)
	}
	assert.Equal(t, filepath.Join(dir, "2020-05-17.log"), w.Path())

	_, err := w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))

	l, err := New("info", w)
	require.NoError(t, err)
	l.Info("executed", "rows", 1)
	data, err = os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=executed rows=1")
}
