package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken     string
	DiscordGuildID   string
	AdminChannelID   string
	ShopkeeperRoleID string
	// Channel for lottery and reset announcements; defaults to the admin channel
	AnnounceChannelID string

	// Database configuration
	DatabaseURL string

	// Ledger configuration
	StartingBalance int64
	MessageReward   int64

	// Economy reset safeguard
	ResetThreshold     int64
	ResetCheckInterval time.Duration

	// Gambling configuration
	JackpotContribution   float64 // fraction of a losing slot wager fed to the pool
	JackpotOverrideChance float64 // chance a natural slot loss becomes a jackpot win
	BigWinThreshold       int64   // winnings at or above this are publicly announced
	RedBlackCooldown      time.Duration

	// Lottery configuration
	TicketPrice  int64
	DrawInterval time.Duration

	// Shop configuration
	ShopTimezone   string
	ShopOpenHour   int
	ShopOpenMinute int
	ShopCloseHour  int
	ShopCloseMinute int
	PurchaseTimeout time.Duration

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

// load loads configuration from environment variables
func load() (*Config, error) {
	// Best-effort .env loading; real env vars win
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:    os.Getenv("DISCORD_GUILD_ID"),
		AdminChannelID:    os.Getenv("ADMIN_CHANNEL_ID"),
		ShopkeeperRoleID:  os.Getenv("SHOPKEEPER_ROLE_ID"),
		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		StartingBalance:       100,
		MessageReward:         1,
		ResetThreshold:        10_000_000,
		ResetCheckInterval:    5 * time.Minute,
		JackpotContribution:   0.10,
		JackpotOverrideChance: 0.0,
		BigWinThreshold:       10_000,
		RedBlackCooldown:      5 * time.Second,
		TicketPrice:           10,
		DrawInterval:          2 * time.Hour,
		ShopTimezone:          "America/Chicago",
		ShopOpenHour:          10,
		ShopCloseHour:         21,
		PurchaseTimeout:       3 * time.Minute,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	overrideInt64(&config.StartingBalance, "STARTING_BALANCE")
	overrideInt64(&config.MessageReward, "MESSAGE_REWARD")
	overrideInt64(&config.ResetThreshold, "ECONOMY_RESET_THRESHOLD")
	overrideInt64(&config.BigWinThreshold, "BIG_WIN_THRESHOLD")
	overrideInt64(&config.TicketPrice, "LOTTERY_TICKET_PRICE")
	overrideFloat(&config.JackpotContribution, "SLOT_JACKPOT_CONTRIBUTION")
	overrideFloat(&config.JackpotOverrideChance, "SLOT_JACKPOT_OVERRIDE_CHANCE")
	overrideInt(&config.ShopOpenHour, "SHOP_OPEN_HOUR")
	overrideInt(&config.ShopOpenMinute, "SHOP_OPEN_MINUTE")
	overrideInt(&config.ShopCloseHour, "SHOP_CLOSE_HOUR")
	overrideInt(&config.ShopCloseMinute, "SHOP_CLOSE_MINUTE")
	overrideDuration(&config.ResetCheckInterval, "RESET_CHECK_INTERVAL")
	overrideDuration(&config.RedBlackCooldown, "REDBLACK_COOLDOWN")
	overrideDuration(&config.DrawInterval, "LOTTERY_DRAW_INTERVAL")
	overrideDuration(&config.PurchaseTimeout, "SHOP_PURCHASE_TIMEOUT")

	if tz := os.Getenv("SHOP_TIMEZONE"); tz != "" {
		config.ShopTimezone = tz
	}
	if config.AnnounceChannelID == "" {
		config.AnnounceChannelID = config.AdminChannelID
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func overrideInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func overrideFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
