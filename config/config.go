package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `validate:"required"`

	// GuildID scopes slash-command registration to one guild for faster
	// iteration; empty registers commands globally
	GuildID string

	// Database configuration
	DatabaseURL string `validate:"required"`

	// Health/metrics HTTP server
	HealthPort int `validate:"gte=1,lte=65535"`

	// Economy configuration
	DebtLimit      int64 `validate:"gt=0"`
	SlotMinimumBet int64 `validate:"gt=0"`

	// Automod configuration
	SpamMuteDuration time.Duration `validate:"gt=0"`

	// Voice configuration
	IdleDisconnectGrace time.Duration `validate:"gt=0"`
	DefaultVolume       float64       `validate:"gte=0,lte=1"`

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, layered over an optional .env file
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Debug("no .env file loaded")
	}

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		// Defaults
		HealthPort:          8000,
		DebtLimit:           10_000_000,
		SlotMinimumBet:      100,
		SpamMuteDuration:    time.Minute,
		IdleDisconnectGrace: 30 * time.Second,
		DefaultVolume:       0.5,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.HealthPort = parsed
		}
	}
	if limit := os.Getenv("DEBT_LIMIT"); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil {
			config.DebtLimit = parsed
		}
	}
	if grace := os.Getenv("IDLE_DISCONNECT_GRACE"); grace != "" {
		if parsed, err := time.ParseDuration(grace); err == nil {
			config.IdleDisconnectGrace = parsed
		}
	}
	if mute := os.Getenv("SPAM_MUTE_DURATION"); mute != "" {
		if parsed, err := time.ParseDuration(mute); err == nil {
			config.SpamMuteDuration = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	// Validation is skipped under test so unit tests can run without credentials
	if config.Environment == "test" {
		return config, nil
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
