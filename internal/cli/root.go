package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prorochestvo/rawl"
	"github.com/prorochestvo/rawl/internal/config"
	"github.com/prorochestvo/rawl/internal/logger"

	_ "github.com/prorochestvo/rawl/driver/duckdb"
	_ "github.com/prorochestvo/rawl/driver/postgres"
	_ "github.com/prorochestvo/rawl/driver/sqlite3"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DSN        string
	LogDir     string
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the rawl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rawl",
		Short: "rawl - raw SQL templates against declared models",
		Long:  "Run SQL templates against a table declared by name and columns, over PostgreSQL, SQLite or DuckDB.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "connection string (default $"+config.EnvDSN+")")
	cmd.PersistentFlags().StringVar(&opts.LogDir, "log-dir", "", "write daily log files to this directory")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewAllCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewFixtureCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// settings merges the config file, environment and flags, flags winning.
func settings(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if len(opts.DSN) > 0 {
		cfg.DSN = opts.DSN
	}
	if len(opts.LogDir) > 0 {
		cfg.LogDir = opts.LogDir
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, error) {
	var w io.Writer = stderr
	if len(cfg.LogDir) > 0 {
		w = logger.NewFileWriter(cfg.LogDir)
	}
	return logger.New(cfg.LogLevel, w)
}

// connect opens the configured database for one command run.
func connect(opts *RootOptions, cmd *cobra.Command) (*rawl.Connection, error) {
	cfg, err := settings(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configuration", err)
	}
	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "logging", err)
	}
	conn, err := rawl.Open(cfg.DSN, rawl.WithConnectionLogger(log))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return conn, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
