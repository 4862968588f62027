package cli

import (
	"github.com/spf13/cobra"

	"github.com/prorochestvo/rawl"
	"github.com/prorochestvo/rawl/db"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Raw bool
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "exec <template> [args...]",
		Short: "Run a statement that returns no rows",
		Long: `Run a SQL template with {0}..{n-1} bound to the arguments and print the
number of rows affected.

Example:
  rawl exec 'DELETE FROM rawl WHERE rawl_id = {0}' 4`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0], bindArgs(args[1:], opts.Raw))
		},
	}
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "bind every argument as a string")
	return cmd
}

func runExec(cmd *cobra.Command, opts *ExecOptions, template string, args []interface{}) error {
	conn, err := connect(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt, err := db.AssembleSimple(conn.Dialect(), template, args...)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	var affected int64
	err = conn.Scope(ctx, func(c *rawl.Conn) error {
		res, err := c.ExecContext(ctx, stmt.Query, stmt.Args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		conn.Logger().Error("exception occurred when executing query", "query", stmt.Query, "error", err)
		return err
	}
	return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Value("rows_affected", affected)
}
