package seed

import (
	"context"

	"github.com/rs/zerolog"
)

// UserSeeder creates the first operator account
type UserSeeder interface {
	EnsureDefaultUser(ctx context.Context, username, password string) (bool, error)
}

// CreateDefaultData seeds the default operator when the users table is empty.
// An empty username or password disables seeding.
func CreateDefaultData(ctx context.Context, users UserSeeder, username, password string, lgr zerolog.Logger) error {
	if username == "" || password == "" {
		lgr.Info().Msg("No default operator configured, skipping seed")
		return nil
	}

	created, err := users.EnsureDefaultUser(ctx, username, password)
	if err != nil {
		lgr.Error().Err(err).Str("username", username).Msg("Error creating default operator")
		return err
	}
	if created {
		lgr.Info().Str("username", username).Msg("Default operator created")
	} else {
		lgr.Debug().Msg("Operators already exist, default operator not created")
	}
	return nil
}
