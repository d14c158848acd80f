// Command import_catalog loads the ingredient and tag catalogs from JSON or
// CSV files. Rows already present are left untouched, so it is safe to rerun.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/service"
)

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "Ingredient file (.json or .csv)")
	tagsPath := flag.String("tags", "", "Optional tag file (.json or .csv)")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	catalog := service.NewCatalogService(db)

	ingredients, skipped, err := readIngredients(*ingredientsPath)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *ingredientsPath).Msg("failed to read ingredients")
	}
	inserted, err := catalog.ImportIngredients(ctx, ingredients)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to import ingredients")
	}
	logging.Info().
		Int("rows", len(ingredients)).
		Int("skipped", skipped).
		Int64("inserted", inserted).
		Msg("ingredients imported")

	if *tagsPath == "" {
		return
	}
	tags, skipped, err := readTags(*tagsPath)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *tagsPath).Msg("failed to read tags")
	}
	inserted, err = catalog.ImportTags(ctx, tags)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to import tags")
	}
	logging.Info().
		Int("rows", len(tags)).
		Int("skipped", skipped).
		Int64("inserted", inserted).
		Msg("tags imported")
}
