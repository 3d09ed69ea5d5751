package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/electiond/cliparse"
	"github.com/danielhkuo/electiond/db"
)

var cfg cliparse.Config

var rootCmd = &cobra.Command{
	Use:           "electiond",
	Short:         "Election lifecycle and vote tallying service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := cliparse.Resolve(cfg)
		if err != nil {
			return err
		}
		cfg = resolved

		level, err := cliparse.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(newLogger(level))
		return nil
	},
}

func init() {
	cliparse.BindFlags(rootCmd.PersistentFlags(), &cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newLogger writes text to a terminal and JSON everywhere else
func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// openDatabase connects and makes sure the schema exists
func openDatabase() (*sql.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("database schema ready", "type", cfg.DatabaseType)

	return conn, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
