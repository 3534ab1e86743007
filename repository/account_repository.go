package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/models"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `discord_id, username, balance, savings, pin, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.DiscordID,
		&account.Username,
		&account.Balance,
		&account.Savings,
		&account.Pin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByDiscordID retrieves an account by Discord ID, returning nil when none exists
func (r *AccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE discord_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by discord ID %d: %w", discordID, err)
	}
	return account, nil
}

// Create creates a new account with the given opening balance
func (r *AccountRepository) Create(ctx context.Context, discordID int64, username string, balance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, username, balance))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", discordID, err)
	}
	return account, nil
}

// AddBalance credits an account
func (r *AccountRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	tag, err := r.q.Exec(ctx, query, discordID, amount)
	if err != nil {
		return fmt.Errorf("failed to add balance for account %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", discordID)
	}
	return nil
}

// DeductBalance debits an account, failing when funds are insufficient.
// The balance guard runs in the same statement so concurrent debits cannot
// drive a balance negative.
func (r *AccountRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	query := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE discord_id = $1 AND balance >= $2
	`

	tag, err := r.q.Exec(ctx, query, discordID, amount)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for account %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		account, getErr := r.GetByDiscordID(ctx, discordID)
		if getErr == nil && account != nil {
			return fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, amount)
		}
		return fmt.Errorf("account %d not found", discordID)
	}
	return nil
}

// UpdateBalance overwrites an account's balance
func (r *AccountRepository) UpdateBalance(ctx context.Context, discordID int64, balance int64) error {
	query := `
		UPDATE accounts
		SET balance = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	tag, err := r.q.Exec(ctx, query, discordID, balance)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", discordID)
	}
	return nil
}

// UpdateSavings overwrites an account's savings
func (r *AccountRepository) UpdateSavings(ctx context.Context, discordID int64, savings int64) error {
	query := `
		UPDATE accounts
		SET savings = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	tag, err := r.q.Exec(ctx, query, discordID, savings)
	if err != nil {
		return fmt.Errorf("failed to update savings for account %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", discordID)
	}
	return nil
}

// SetPin stores a savings PIN
func (r *AccountRepository) SetPin(ctx context.Context, discordID int64, pin string) error {
	query := `
		UPDATE accounts
		SET pin = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	tag, err := r.q.Exec(ctx, query, discordID, pin)
	if err != nil {
		return fmt.Errorf("failed to set pin for account %d: %w", discordID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", discordID)
	}
	return nil
}

// UpdateUsername refreshes the cached display name
func (r *AccountRepository) UpdateUsername(ctx context.Context, discordID int64, username string) error {
	query := `
		UPDATE accounts
		SET username = $2, updated_at = NOW()
		WHERE discord_id = $1 AND username != $2
	`

	if _, err := r.q.Exec(ctx, query, discordID, username); err != nil {
		return fmt.Errorf("failed to update username for account %d: %w", discordID, err)
	}
	return nil
}

// GetAll retrieves every account ordered by balance descending
func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY balance DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// TotalCurrency sums balance plus savings across all accounts
func (r *AccountRepository) TotalCurrency(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(balance + savings), 0) FROM accounts`

	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum total currency: %w", err)
	}
	return total, nil
}

// ResetAll sets every balance to the given value and zeroes savings,
// returning the number of accounts touched
func (r *AccountRepository) ResetAll(ctx context.Context, balance int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = $1, savings = 0, updated_at = NOW()
	`

	tag, err := r.q.Exec(ctx, query, balance)
	if err != nil {
		return 0, fmt.Errorf("failed to reset accounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// TopUpZeroBalances raises zero-balance accounts to the given value,
// returning the number of accounts touched
func (r *AccountRepository) TopUpZeroBalances(ctx context.Context, balance int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE balance = 0
	`

	tag, err := r.q.Exec(ctx, query, balance)
	if err != nil {
		return 0, fmt.Errorf("failed to top up zero balances: %w", err)
	}
	return tag.RowsAffected(), nil
}
