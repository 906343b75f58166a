package main

import (
	"context"

	"github.com/pushp314/messenger-backend/internal/config"
	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/migrations"
	"github.com/pushp314/messenger-backend/internal/seeds"
	"github.com/pushp314/messenger-backend/pkg/logger"
)

func main() {
	config.LoadConfig()
	logger.Init(config.AppConfig.Env)
	database.Connect()

	logger.Info().Msg("Running migrations (just in case)...")
	if err := migrations.AutoMigrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate tables")
	}

	ctx := context.Background()

	users, err := seeds.SeedUsers(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed users")
	}
	if err := seeds.SeedConversations(ctx, users); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed conversations")
	}

	logger.Info().Int("users", len(users)).Str("password", seeds.DemoPassword).Msg("Seeding complete")
}
