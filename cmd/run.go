package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"rumia/bot"
	"rumia/bot/features/basic"
	"rumia/bot/features/economy"
	"rumia/bot/features/entertainment"
	"rumia/bot/features/games"
	"rumia/bot/features/moderation"
	"rumia/bot/features/music"
	"rumia/bot/gamesession"
	"rumia/config"
	"rumia/database"
	"rumia/events"
	"rumia/health"
	"rumia/repository"
	"rumia/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting rumia bot...")

	cfg := config.Get()

	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	economyService := service.NewEconomyService(uowFactory)
	settingsService := service.NewGuildSettingsService(uowFactory)
	moderationService := service.NewModerationService(uowFactory)

	dispatcher := bot.NewDispatcher()
	sessions := gamesession.NewManager()

	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, dispatcher, sessions, settingsService, moderationService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	economyFeature := economy.New(economyService)
	gamesFeature := games.New(economyService, sessions)
	moderationFeature := moderation.New(moderationService, settingsService)
	musicFeature := music.New(discordBot.Voice())
	entertainmentFeature := entertainment.New()
	basicFeature := basic.New()

	dispatcher.Register(economyFeature.Commands()...)
	dispatcher.Register(gamesFeature.Commands()...)
	dispatcher.Register(moderationFeature.Commands()...)
	dispatcher.Register(musicFeature.Commands()...)
	dispatcher.Register(entertainmentFeature.Commands()...)
	dispatcher.Register(basicFeature.Commands()...)
	dispatcher.RegisterComponent(gamesFeature.Components()...)

	if err := discordBot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	healthServer := health.NewServer(cfg.HealthPort)
	healthServer.Start()

	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down health server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
