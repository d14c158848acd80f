package main

import (
	"database/sql"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS migrations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (default MIGRATIONS_DIR or ./migrations)")
	flag.Parse()

	_ = godotenv.Load()
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	dsn := os.Getenv("DATABASE_URL")
	migrationsDir := *dir
	if dsn == "" || migrationsDir == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and the configuration is invalid")
		}
		if dsn == "" {
			dsn = cfg.DSN()
		}
		if migrationsDir == "" {
			migrationsDir = cfg.MigrationsDir
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(createMigrationsTable); err != nil {
		logging.Fatal().Err(err).Msg("failed to create migrations table")
	}

	if *rollback {
		if err := rollbackLast(db, migrationsDir); err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		return
	}

	files, err := database.PendingFiles(migrationsDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to list migrations")
	}
	for _, file := range files {
		if err := apply(db, migrationsDir, file); err != nil {
			logging.Fatal().Err(err).Str("migration", file).Msg("failed to apply migration")
		}
	}
	logging.Info().Int("files", len(files)).Msg("all migrations applied")
}

func apply(db *sql.DB, dir, file string) error {
	var applied bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)", file).Scan(&applied); err != nil {
		return err
	}
	if applied {
		logging.Info().Str("migration", file).Msg("already applied")
		return nil
	}

	content, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (name) VALUES ($1)", file); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logging.Info().Str("migration", file).Msg("applied migration")
	return nil
}

// rollbackLast runs <name>_rollback.sql for the most recently applied
// migration and forgets it
func rollbackLast(db *sql.DB, dir string) error {
	var name string
	err := db.QueryRow("SELECT name FROM migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Info().Msg("no migrations to rollback")
		return nil
	}
	if err != nil {
		return err
	}

	path := filepath.Join(dir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM migrations WHERE name = $1", name); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logging.Info().Str("migration", name).Msg("rolled back migration")
	return nil
}
