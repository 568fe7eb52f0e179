package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scrimbot/internal/adapters/discord"
	"scrimbot/internal/config"
	"scrimbot/internal/infrastructure/database"
	"scrimbot/internal/infrastructure/i18n"
	"scrimbot/internal/infrastructure/metrics"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Configuration invalide")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Initialisation de la base de données")
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("❌ Migrations")
	}

	panelRepo := database.NewPanelRepository(pool)
	teamRepo := database.NewTeamRepository(pool)
	guildRepo := database.NewGuildSettingsRepository(pool, cfg.DefaultLocale)

	translator := i18n.NewTranslator(cfg.DefaultLocale)

	store := metrics.New()
	go metrics.Serve(cfg.MetricsAddr)

	bot, err := discord.NewBot(cfg, panelRepo, teamRepo, guildRepo, translator, store)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Création du bot")
	}
	if err := bot.Start(); err != nil {
		log.Error().Err(err).Msg("❌ Démarrage du bot")
		os.Exit(1)
	}
}
