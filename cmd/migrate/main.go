// Command migrate applies the warehouse schema migrations. The load
// stage ensures the table on its own; this tool provisions it ahead of
// time.
package main

import (
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/dvloznov/portfolio-etl/internal/config"
	"github.com/dvloznov/portfolio-etl/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	log := logger.New(zerolog.InfoLevel)

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	wcfg := cfg.Warehouse()
	if wcfg == nil {
		log.Fatal().Msg("All five REDSHIFT_* variables must be set to run migrations")
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("Failed to set goose dialect")
	}

	db, err := goose.OpenDBWithDriver("pgx", wcfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open warehouse connection")
	}
	defer db.Close()

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Msg("Warehouse schema is up to date")
}
