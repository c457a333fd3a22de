package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/tarcin/docissuer/internal/app/services"
	"github.com/tarcin/docissuer/internal/bootstrap"
)

func newCreateUserCmd(opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an operator account",
		Long: `Create an operator who can log in through POST /api/v1/auth/login.

The password is read from --password or, when omitted, from DOCCTL_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("DOCCTL_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or DOCCTL_PASSWORD)")
			}

			ctx := cmd.Context()
			e, err := connect(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			authService := services.NewAuthService(e.repos.UserRepository, bootstrap.NewJWTService(e.cfg), bootstrap.NewPasswordHasher(e.cfg), e.log)
			user, err := authService.CreateUser(ctx, username, password)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "created operator %s (%s)", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "operator username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "operator password, at least 8 characters")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
