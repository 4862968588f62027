package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prorochestvo/rawl"
)

// ModelOptions holds the flags that declare a model.
type ModelOptions struct {
	*RootOptions
	Table      string
	Columns    string
	PrimaryKey string
	Raw        bool
}

func (o *ModelOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Table, "table", "", "table name (required)")
	cmd.Flags().StringVar(&o.Columns, "columns", "", "comma separated column list (required)")
	cmd.Flags().StringVar(&o.PrimaryKey, "pk", "", "primary key column (default: first column)")
	cmd.Flags().BoolVar(&o.Raw, "raw", false, "bind every argument as a string")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("columns")
}

// model opens the database and declares the model. The returned close
// function releases the pool.
func (o *ModelOptions) model(cmd *cobra.Command) (*rawl.Model, func(), error) {
	conn, err := connect(o.RootOptions, cmd)
	if err != nil {
		return nil, nil, err
	}
	var options []rawl.ModelOption
	if len(o.PrimaryKey) > 0 {
		options = append(options, rawl.WithPrimaryKey(o.PrimaryKey))
	}
	m, err := rawl.New(conn, o.Table, o.Columns, options...)
	if err != nil {
		_ = conn.Close()
		return nil, nil, WrapExitError(ExitCommandError, "declare model", err)
	}
	return m, func() { _ = conn.Close() }, nil
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "select <template> [args...]",
		Short: "Run a template with {0} expanded to the model columns",
		Long: `Run a SQL template against the model. {0} is replaced by the quoted column
list, {1}..{n} are bound to the arguments in order.

Example:
  rawl select --table state --columns state_id,name 'SELECT {0} FROM state WHERE state_id = {1}' 1`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, opts, func(ctx context.Context, m *rawl.Model) ([]*rawl.Row, error) {
				return m.Select(ctx, args[0], m.Columns(), bindArgs(args[1:], opts.Raw)...)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "query <template> [args...]",
		Short: "Run a template with {0}..{n-1} bound to the arguments",
		Long: `Run a SQL template whose placeholders start at {0}. Returned rows are keyed
by the model columns.

Example:
  rawl query --table rawl --columns rawl_id,name 'SELECT rawl_id, name FROM rawl WHERE rawl_id > {0}' 2`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, opts, func(ctx context.Context, m *rawl.Model) ([]*rawl.Row, error) {
				return m.Query(ctx, args[0], bindArgs(args[1:], opts.Raw)...)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "get <pk>",
		Short:         "Fetch one row by primary key",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, opts, func(ctx context.Context, m *rawl.Model) ([]*rawl.Row, error) {
				row, err := m.Get(ctx, bindArg(args[0], opts.Raw))
				if err != nil {
					return nil, err
				}
				return []*rawl.Row{row}, nil
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewAllCommand creates the all command.
func NewAllCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "all",
		Short:         "Fetch every row of the table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, opts, func(ctx context.Context, m *rawl.Model) ([]*rawl.Row, error) {
				return m.All(ctx)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "insert <column=value>...",
		Short: "Insert one row and print its primary key",
		Long: `Insert one row built from column=value pairs. Columns left out take their
default; no pairs at all inserts a row of defaults.

Example:
  rawl insert --table rawl --columns rawl_id,name name='I am row five.'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args, opts.Raw)
			if err != nil {
				return err
			}
			m, done, err := opts.model(cmd)
			if err != nil {
				return err
			}
			defer done()
			pk, err := m.InsertMap(cmd.Context(), values)
			if err != nil {
				return err
			}
			return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Value(m.PrimaryKey(), pk)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runRows(cmd *cobra.Command, opts *ModelOptions, fn func(context.Context, *rawl.Model) ([]*rawl.Row, error)) error {
	m, done, err := opts.model(cmd)
	if err != nil {
		return err
	}
	defer done()
	rows, err := fn(cmd.Context(), m)
	if err != nil {
		return err
	}
	return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Rows(rows)
}

func bindArgs(args []string, raw bool) []interface{} {
	result := make([]interface{}, 0, len(args))
	for _, arg := range args {
		result = append(result, bindArg(arg, raw))
	}
	return result
}

// bindArg binds integer-looking arguments as int64 unless raw is set.
func bindArg(arg string, raw bool) interface{} {
	if !raw {
		if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
			return i
		}
	}
	return arg
}

func parseAssignments(args []string, raw bool) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || len(name) == 0 {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("expected column=value, got %q", arg))
		}
		result[name] = bindArg(value, raw)
	}
	return result, nil
}
