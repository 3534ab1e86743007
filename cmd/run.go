package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinbank/bot"
	"coinbank/config"
	"coinbank/database"
	"coinbank/events"
	"coinbank/repository"
	"coinbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting coinbank bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Run pending migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	rng := service.NewSystemRand()
	ledgerService := service.NewLedgerService(uowFactory, cfg)
	gamblingService := service.NewGamblingService(uowFactory, cfg, rng)
	lotteryService := service.NewLotteryService(uowFactory, cfg, rng)
	shopService := service.NewShopService(uowFactory, cfg)
	resetService := service.NewEconomyResetService(uowFactory, cfg)
	log.Println("Services initialized successfully")

	// Seed starting balances for any zero-balance accounts exactly once
	toppedUp, err := resetService.EnsureInitialBalances(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to ensure initial balances: %w", err)
	}
	if toppedUp > 0 {
		log.Printf("Topped up %d zero-balance accounts to the starting balance", toppedUp)
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, ledgerService, gamblingService, lotteryService, shopService, resetService, eventBus)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start background workers
	stopLottery := discordBot.StartLotteryDrawWorker(ctx)
	stopReset := discordBot.StartEconomyResetWorker(ctx)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")
	stopLottery()
	stopReset()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
