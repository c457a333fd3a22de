package main

import (
	"github.com/spf13/cobra"
	"github.com/tarcin/docissuer/internal/app/migrations"
	"github.com/tarcin/docissuer/internal/bootstrap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			dir := e.cfg.Server.MigrationsDir
			if status {
				list, err := migrations.NewMigrator(e.pool, e.log).Status(ctx, dir)
				if err != nil {
					return err
				}
				renderMigrations(out, list)
				return nil
			}

			if err := bootstrap.RunMigrations(ctx, e.pool, dir, e.log); err != nil {
				return err
			}
			printSuccess(out, "migrations in %s are up to date", dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations without applying them")
	return cmd
}
