package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prorochestvo/rawl/db"
	"github.com/prorochestvo/rawl/internal/fixture"
)

// NewFixtureCommand creates the fixture command.
func NewFixtureCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Create and seed the demo tables in a SQLite database",
		Long: `Apply the embedded demo migrations (tables state and rawl) to the SQLite
database named by --dsn. Already applied migrations are skipped.

Example:
  rawl --dsn sqlite3:///tmp/demo.db fixture`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixture(cmd, rootOpts)
		},
	}
	return cmd
}

func runFixture(cmd *cobra.Command, opts *RootOptions) error {
	conn, err := connect(opts, cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	if conn.Dialect() != db.SQLite {
		return NewExitError(ExitCommandError, fmt.Sprintf("fixture needs a sqlite3 database, got %s", conn.Dialect().Name()))
	}
	if err := fixture.Apply(conn.DB()); err != nil {
		return WrapExitError(ExitFailure, "apply fixture", err)
	}
	conn.Logger().Info("fixture applied")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "fixture applied")
	return err
}
