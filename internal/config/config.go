// Package config loads the bot configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable, e.g. VOCABBOT_TELEGRAM_TOKEN
const Prefix = "VOCABBOT"

// Config holds the runtime settings of the bot
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`
	WordsFile     string `envconfig:"WORDS_FILE" default:"data/words/words.json" validate:"required"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"file" validate:"oneof=file sqlite postgres"`
	UsersDir    string `envconfig:"USERS_DIR" default:"data/users" validate:"required_if=StoreDriver file"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" validate:"required_if=StoreDriver postgres"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	PracticeWords         int  `envconfig:"PRACTICE_WORDS" default:"5" validate:"min=1,max=50"`
	PracticeFilterByLevel bool `envconfig:"PRACTICE_FILTER_BY_LEVEL" default:"false"`

	MismatchDelay time.Duration `envconfig:"MISMATCH_DELAY" default:"3s" validate:"min=0"`
	GameIdleTTL   time.Duration `envconfig:"GAME_IDLE_TTL" default:"2h" validate:"min=1m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m" validate:"min=1m"`

	RateLimit float64 `envconfig:"RATE_LIMIT" default:"4" validate:"gt=0"`
	RateBurst int     `envconfig:"RATE_BURST" default:"8" validate:"min=1"`

	PersistAttempts int `envconfig:"PERSIST_ATTEMPTS" default:"3" validate:"min=1,max=10"`
}

// Load reads an optional .env file, then the environment
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is fine, the environment may be set directly
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequireToken is checked by commands that talk to Telegram
func (c *Config) RequireToken() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("%s_TELEGRAM_TOKEN environment variable is not set", Prefix)
	}
	return nil
}
