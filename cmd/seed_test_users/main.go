// Command seed_test_users creates development accounts that share one
// password. Existing accounts are skipped.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

const password = "testpassword123"

var testUsers = []struct {
	first, last, username string
	admin                 bool
}{
	{"John", "Doe", "johndoe", false},
	{"Jane", "Smith", "janesmith", false},
	{"Bob", "Wilson", "bobwilson", false},
	{"Admin", "User", "admin", true},
}

func main() {
	_ = godotenv.Load()
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	members := service.NewMembershipService(store.NewGormStore(db))

	var created []models.User
	for _, u := range testUsers {
		user, err := auth.Register(ctx, &types.RegisterRequest{
			Email:     u.username + "@example.com",
			Username:  u.username,
			FirstName: u.first,
			LastName:  u.last,
			Password:  password,
		})
		if errors.Is(err, service.ErrAlreadyExists) {
			logging.Info().Str("username", u.username).Msg("user already exists, skipping")
			continue
		}
		if err != nil {
			logging.Error().Err(err).Str("username", u.username).Msg("failed to create user")
			continue
		}
		if u.admin {
			if err := db.Model(user).Update("is_admin", true).Error; err != nil {
				logging.Error().Err(err).Str("username", u.username).Msg("failed to promote user")
			}
		}
		created = append(created, *user)
		logging.Info().Str("username", u.username).Bool("admin", u.admin).Msg("created user")
	}

	// everyone new follows the first new account
	for i := 1; i < len(created); i++ {
		if err := members.ToggleSubscription(ctx, service.ActionAdd, created[i].ID, created[0].ID); err != nil {
			logging.Warn().Err(err).Str("follower", created[i].Username).Msg("failed to subscribe")
		}
	}

	logging.Info().
		Int("created", len(created)).
		Str("password", password).
		Msg("test users ready")
}
