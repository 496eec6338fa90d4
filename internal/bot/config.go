package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Sustained button presses per second allowed per user
	RateLimit float64
	// Presses allowed in a burst
	RateBurst int
	// Long polling timeout
	UpdateTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		RateLimit:     4,
		RateBurst:     8,
		UpdateTimeout: 60 * time.Second,
	}
}
