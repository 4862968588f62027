package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/prorochestvo/rawl"
)

// Exit codes for the CLI.
const (
	ExitSuccess      = 0 // statement ran
	ExitFailure      = 1 // the database rejected the statement or the row was not found
	ExitCommandError = 2 // bad flags, arguments, configuration or template
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Template and column errors are
// usage errors; anything else that reached the database is a failure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, rawl.ErrTemplateMismatch) || errors.Is(err, rawl.ErrInvalidColumn) || errors.Is(err, rawl.ErrInvalidDSN) {
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter writes rows and results in the selected format.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

// Rows writes a result set. Text output is a tab-aligned table with a header.
func (f *OutputFormatter) Rows(rows []*rawl.Row) error {
	if rows == nil {
		rows = []*rawl.Row{}
	}
	switch f.Format {
	case "json":
		return f.json(rows)
	case "yaml":
		return f.yaml(rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(f.Writer, "(no rows)")
		return err
	}
	w := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(rows[0].Columns(), "\t"))
	for _, row := range rows {
		cells := make([]string, 0, row.Len())
		for _, value := range row.Values() {
			cells = append(cells, cell(value))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// Value writes a single scalar result under key.
func (f *OutputFormatter) Value(key string, value interface{}) error {
	switch f.Format {
	case "json":
		return f.json(map[string]interface{}{key: value})
	case "yaml":
		return f.yaml(map[string]interface{}{key: value})
	}
	_, err := fmt.Fprintf(f.Writer, "%s: %s\n", key, cell(value))
	return err
}

func (f *OutputFormatter) json(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) yaml(v interface{}) error {
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func cell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		if !utf8.Valid(v) {
			return fmt.Sprintf("\\x%x", v)
		}
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(value)
}
