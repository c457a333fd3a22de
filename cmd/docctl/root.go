package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/bootstrap"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/db"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	warning = color.New(color.FgYellow)
	heading = color.New(color.FgCyan, color.Bold)
)

// env is what every subcommand needs once the config is loaded
type env struct {
	cfg   *config.Config
	pool  *pgxpool.Pool
	repos *repositories.Repositories
	log   zerolog.Logger
}

func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "docctl",
		Short: "Administer the document issuing service",
		Long: `docctl runs maintenance tasks against the docissuer database.

Available subcommands:
  migrate     - Apply pending SQL migrations
  create-user - Create an operator account
  stats       - Show document totals
  sequences   - Show certificate sequence counters
  render      - Render a stored certificate or letter to a PDF file`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		config.GetEnv("CONFIG_PATH", filepath.FromSlash(bootstrap.DefaultConfigPath)), "path to config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newMigrateCmd(opts),
		newCreateUserCmd(opts),
		newStatsCmd(opts),
		newSequencesCmd(opts),
		newRenderCmd(opts),
	)
	return root
}

// connect loads the config and opens the database pool
func connect(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := logger.WarnLevel
	if opts.verbose {
		level = logger.DebugLevel
	}
	lgr := logger.Configure(logger.Config{Level: level, Pretty: true, Service: "docctl"})

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		database.Close()
		return nil, err
	}

	return &env{
		cfg:   cfg,
		pool:  database.Pool,
		repos: repositories.NewRepositories(database.Pool),
		log:   lgr,
	}, nil
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	success.Fprintf(w, "✔ "+format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	warning.Fprintf(w, format+"\n", args...)
}
