package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"coinbank/config"
	"coinbank/database"
	"coinbank/events"
	"coinbank/legacy"
	"coinbank/models"
	"coinbank/repository"
)

// ImportLegacy imports accounts, pool state and shop items from the JSON
// files the previous bot kept on disk. The whole import runs in a single
// transaction: either everything lands or nothing does.
func ImportLegacy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-legacy", flag.ContinueOnError)
	usersPath := fs.String("users", "", "path to user_balances.json")
	botDataPath := fs.String("botdata", "", "path to bot_data.json")
	itemsPath := fs.String("items", "", "path to shop_items.json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *usersPath == "" && *botDataPath == "" && *itemsPath == "" {
		return fmt.Errorf("nothing to import: pass at least one of -users, -botdata, -items")
	}

	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var accounts []legacy.Account
	if *usersPath != "" {
		data, err := os.ReadFile(*usersPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *usersPath, err)
		}
		if accounts, err = legacy.ParseAccounts(data); err != nil {
			return err
		}
	}

	var pools *legacy.PoolState
	if *botDataPath != "" {
		data, err := os.ReadFile(*botDataPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *botDataPath, err)
		}
		if pools, err = legacy.ParsePoolState(data); err != nil {
			return err
		}
	}

	var items []legacy.Item
	if *itemsPath != "" {
		data, err := os.ReadFile(*itemsPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *itemsPath, err)
		}
		if items, err = legacy.ParseItems(data); err != nil {
			return err
		}
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, acct := range accounts {
		existing, err := uow.AccountRepository().GetByDiscordID(ctx, acct.DiscordID)
		if err != nil {
			return err
		}
		if existing == nil {
			// Username is unknown in the legacy data; the first interaction
			// after import refreshes it.
			if _, err := uow.AccountRepository().Create(ctx, acct.DiscordID, fmt.Sprintf("user-%d", acct.DiscordID), acct.Balance); err != nil {
				return err
			}
		} else if err := uow.AccountRepository().UpdateBalance(ctx, acct.DiscordID, acct.Balance); err != nil {
			return err
		}
		if acct.Savings != 0 {
			if err := uow.AccountRepository().UpdateSavings(ctx, acct.DiscordID, acct.Savings); err != nil {
				return err
			}
		}
		if acct.Pin != nil {
			if err := uow.AccountRepository().SetPin(ctx, acct.DiscordID, *acct.Pin); err != nil {
				return err
			}
		}
	}

	if pools != nil {
		state, err := uow.EconomyStateRepository().Get(ctx)
		if err != nil {
			return err
		}
		state.JackpotPool = pools.JackpotPool
		state.LotteryPot = pools.LotteryPot
		state.LotteryTickets = pools.LotteryTickets
		// Imported accounts already carry their balances
		state.InitialBalanceCheckDone = true
		if err := uow.EconomyStateRepository().Update(ctx, state); err != nil {
			return err
		}
	}

	importedItems := 0
	for _, item := range items {
		existing, err := uow.ShopItemRepository().GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Printf("Skipping shop item %s: already exists", item.ID)
			continue
		}
		addedAt := time.Now()
		if item.AddedAt != nil {
			addedAt = *item.AddedAt
		}
		if err := uow.ShopItemRepository().Create(ctx, &models.ShopItem{
			ID:         item.ID,
			Name:       item.Name,
			CreditCost: item.CreditCost,
			USDPrice:   item.USDPrice,
			ExpiresAt:  item.ExpiresAt,
			AddedBy:    item.AddedBy,
			AddedAt:    addedAt,
		}); err != nil {
			return err
		}
		importedItems++
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Imported %d accounts, %d shop items", len(accounts), importedItems)
	if pools != nil {
		log.Printf("Imported pool state: jackpot=%d, lottery pot=%d, tickets=%d",
			pools.JackpotPool, pools.LotteryPot, len(pools.LotteryTickets))
	}
	return nil
}
