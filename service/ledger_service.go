package service

import (
	"context"
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"

	"coinbank/config"
	"coinbank/events"
	"coinbank/models"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, cfg *config.Config) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// getOrCreateAccount fetches an account inside an open unit of work, creating
// it with the starting balance on first reference. The creation event is
// published through the unit of work so it only fires after commit.
func getOrCreateAccount(ctx context.Context, uow UnitOfWork, discordID int64, username string, startingBalance int64) (*models.Account, error) {
	repo := uow.AccountRepository()

	account, err := repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		if username != "" && account.Username != username {
			if err := repo.UpdateUsername(ctx, discordID, username); err != nil {
				return nil, err
			}
			account.Username = username
		}
		return account, nil
	}

	account, err = repo.Create(ctx, discordID, username, startingBalance)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		DiscordID:       discordID,
		Username:        username,
		StartingBalance: startingBalance,
	})

	log.WithFields(log.Fields{
		"discordID": discordID,
		"username":  username,
		"balance":   startingBalance,
	}).Info("account created")

	return account, nil
}

func (s *ledgerService) GetOrCreateAccount(ctx context.Context, discordID int64, username string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

func (s *ledgerService) Transfer(ctx context.Context, fromID, toID int64, fromUsername, toUsername string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromID == toID {
		return nil, fmt.Errorf("cannot transfer to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sender, err := getOrCreateAccount(ctx, uow, fromID, fromUsername, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if sender.Balance < amount {
		return nil, fmt.Errorf("insufficient balance: have %d, need %d", sender.Balance, amount)
	}
	if _, err := getOrCreateAccount(ctx, uow, toID, toUsername, s.cfg.StartingBalance); err != nil {
		return nil, err
	}

	repo := uow.AccountRepository()
	if err := repo.DeductBalance(ctx, fromID, amount); err != nil {
		return nil, err
	}
	if err := repo.AddBalance(ctx, toID, amount); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount,
	}).Info("transfer completed")

	return &models.TransferResult{
		Amount:     amount,
		NewBalance: sender.Balance - amount,
	}, nil
}

func (s *ledgerService) Give(ctx context.Context, discordID int64, username string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return 0, err
	}
	if err := uow.AccountRepository().AddBalance(ctx, discordID, amount); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account.Balance + amount, nil
}

// Take removes at most amount from the account. When the balance is smaller
// than the requested amount, only the balance is taken.
func (s *ledgerService) Take(ctx context.Context, discordID int64, username string, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return 0, 0, err
	}

	taken := amount
	if account.Balance < taken {
		taken = account.Balance
	}
	if taken > 0 {
		if err := uow.AccountRepository().DeductBalance(ctx, discordID, taken); err != nil {
			return 0, 0, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return taken, account.Balance - taken, nil
}

func (s *ledgerService) SetBalance(ctx context.Context, discordID int64, username string, balance int64) error {
	if balance < 0 {
		return fmt.Errorf("balance cannot be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance); err != nil {
		return err
	}
	if err := uow.AccountRepository().UpdateBalance(ctx, discordID, balance); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) SetPin(ctx context.Context, discordID int64, username string, pin string) (bool, error) {
	if !pinPattern.MatchString(pin) {
		return false, fmt.Errorf("pin must be exactly 4 digits")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return false, err
	}
	replaced := account.HasPin()

	if err := uow.AccountRepository().SetPin(ctx, discordID, pin); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return replaced, nil
}

// checkPin validates savings access. An account without a PIN cannot use
// savings at all.
func checkPin(account *models.Account, pin string) error {
	if !account.HasPin() {
		return fmt.Errorf("no pin set: use the codeset command first")
	}
	if !account.PinMatches(pin) {
		return fmt.Errorf("incorrect pin")
	}
	return nil
}

func (s *ledgerService) SavingsBalance(ctx context.Context, discordID int64, username string, pin string) (*models.SavingsResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if err := checkPin(account, pin); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.SavingsResult{Balance: account.Balance, Savings: account.Savings}, nil
}

func (s *ledgerService) Deposit(ctx context.Context, discordID int64, username string, amount int64, pin string) (*models.SavingsResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if err := checkPin(account, pin); err != nil {
		return nil, err
	}
	if account.Balance < amount {
		return nil, fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, amount)
	}

	repo := uow.AccountRepository()
	if err := repo.DeductBalance(ctx, discordID, amount); err != nil {
		return nil, err
	}
	if err := repo.UpdateSavings(ctx, discordID, account.Savings+amount); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.SavingsResult{
		Balance: account.Balance - amount,
		Savings: account.Savings + amount,
	}, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, discordID int64, username string, amount int64, pin string) (*models.SavingsResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if err := checkPin(account, pin); err != nil {
		return nil, err
	}
	if account.Savings < amount {
		return nil, fmt.Errorf("insufficient savings: have %d, need %d", account.Savings, amount)
	}

	repo := uow.AccountRepository()
	if err := repo.UpdateSavings(ctx, discordID, account.Savings-amount); err != nil {
		return nil, err
	}
	if err := repo.AddBalance(ctx, discordID, amount); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.SavingsResult{
		Balance: account.Balance + amount,
		Savings: account.Savings - amount,
	}, nil
}

// RewardMessage grants the flat per-message reward
func (s *ledgerService) RewardMessage(ctx context.Context, discordID int64, username string) error {
	if s.cfg.MessageReward <= 0 {
		return nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance); err != nil {
		return err
	}
	if err := uow.AccountRepository().AddBalance(ctx, discordID, s.cfg.MessageReward); err != nil {
		return err
	}

	return uow.Commit()
}
