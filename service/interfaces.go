package service

import (
	"context"
	"time"

	"coinbank/events"
	"coinbank/models"
)

// AccountRepository manages persistent account state
type AccountRepository interface {
	// GetByDiscordID returns the account or nil when none exists
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Account, error)
	// Create inserts a new account with the given opening balance
	Create(ctx context.Context, discordID int64, username string, balance int64) (*models.Account, error)
	// AddBalance credits an account
	AddBalance(ctx context.Context, discordID int64, amount int64) error
	// DeductBalance debits an account, failing when funds are insufficient
	DeductBalance(ctx context.Context, discordID int64, amount int64) error
	// UpdateBalance overwrites an account's balance
	UpdateBalance(ctx context.Context, discordID int64, balance int64) error
	// UpdateSavings overwrites an account's savings
	UpdateSavings(ctx context.Context, discordID int64, savings int64) error
	// SetPin stores a 4-digit savings PIN
	SetPin(ctx context.Context, discordID int64, pin string) error
	// UpdateUsername refreshes the cached display name
	UpdateUsername(ctx context.Context, discordID int64, username string) error
	// GetAll returns every account
	GetAll(ctx context.Context) ([]*models.Account, error)
	// TotalCurrency sums balance plus savings across all accounts
	TotalCurrency(ctx context.Context) (int64, error)
	// ResetAll sets every balance to the given value and zeroes savings,
	// returning the number of accounts touched
	ResetAll(ctx context.Context, balance int64) (int64, error)
	// TopUpZeroBalances raises zero-balance accounts to the given value,
	// returning the number of accounts touched
	TopUpZeroBalances(ctx context.Context, balance int64) (int64, error)
}

// ShopItemRepository manages the shop catalog
type ShopItemRepository interface {
	// GetByID returns the item or nil when none exists
	GetByID(ctx context.Context, id string) (*models.ShopItem, error)
	// GetAll returns every item, expired included
	GetAll(ctx context.Context) ([]*models.ShopItem, error)
	// Create inserts a new item
	Create(ctx context.Context, item *models.ShopItem) error
	// Delete removes an item, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}

// EconomyStateRepository manages the singleton pool state row
type EconomyStateRepository interface {
	// Get returns the pool state, locked for update inside a transaction
	Get(ctx context.Context) (*models.EconomyState, error)
	// Update persists the pool state
	Update(ctx context.Context, state *models.EconomyState) error
}

// EventPublisher accumulates events for delivery after commit
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork bundles repositories into a single database transaction.
// Events published through EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	AccountRepository() AccountRepository
	ShopItemRepository() ShopItemRepository
	EconomyStateRepository() EconomyStateRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Rand is the source of randomness for the games. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// LedgerService handles balances, transfers and savings
type LedgerService interface {
	// GetOrCreateAccount fetches an account, creating it with the starting
	// balance on first reference
	GetOrCreateAccount(ctx context.Context, discordID int64, username string) (*models.Account, error)
	// Transfer moves currency between two accounts atomically
	Transfer(ctx context.Context, fromID, toID int64, fromUsername, toUsername string, amount int64) (*models.TransferResult, error)
	// Give credits an account (admin), returning the new balance
	Give(ctx context.Context, discordID int64, username string, amount int64) (int64, error)
	// Take debits an account (admin), clamping to the available balance.
	// Returns the amount actually taken and the new balance.
	Take(ctx context.Context, discordID int64, username string, amount int64) (int64, int64, error)
	// SetBalance overwrites an account's balance (admin)
	SetBalance(ctx context.Context, discordID int64, username string, balance int64) error
	// SetPin sets the savings PIN, reporting whether one was replaced
	SetPin(ctx context.Context, discordID int64, username string, pin string) (bool, error)
	// SavingsBalance returns both sides of the account, PIN-gated
	SavingsBalance(ctx context.Context, discordID int64, username string, pin string) (*models.SavingsResult, error)
	// Deposit moves currency from balance to savings, PIN-gated
	Deposit(ctx context.Context, discordID int64, username string, amount int64, pin string) (*models.SavingsResult, error)
	// Withdraw moves currency from savings to balance, PIN-gated
	Withdraw(ctx context.Context, discordID int64, username string, amount int64, pin string) (*models.SavingsResult, error)
	// RewardMessage credits the per-message reward
	RewardMessage(ctx context.Context, discordID int64, username string) error
}

// GamblingService runs the chance games and owns the jackpot knobs
type GamblingService interface {
	PlaySlots(ctx context.Context, discordID int64, username string, wager int64) (*models.SlotResult, error)
	PlayDice(ctx context.Context, discordID int64, username string, guess int, wager int64) (*models.DiceResult, error)
	PlayRedBlack(ctx context.Context, discordID int64, username string, choice string, wager int64) (*models.RedBlackResult, error)
	// SetJackpotPool overwrites the jackpot pool (admin)
	SetJackpotPool(ctx context.Context, amount int64) error
	// SetJackpotContribution sets the loss contribution rate (admin)
	SetJackpotContribution(ctx context.Context, rate float64) error
	// SetJackpotOverrideChance sets the forced-jackpot probability (admin)
	SetJackpotOverrideChance(ctx context.Context, chance float64) error
	// JackpotPool returns the current pool
	JackpotPool(ctx context.Context) (int64, error)
}

// LotteryService sells tickets and runs draws
type LotteryService interface {
	BuyTickets(ctx context.Context, discordID int64, username string, count int) (*models.TicketPurchase, error)
	// Draw picks a winner weighted by tickets held and pays the whole pot.
	// Returns nil when no tickets were sold.
	Draw(ctx context.Context) (*models.DrawResult, error)
	Info(ctx context.Context) (*models.LotteryInfo, error)
	// MarkNextDraw records when the next scheduled draw will run
	MarkNextDraw(t time.Time)
}

// PurchaseCheck reports whether a purchase can proceed
type PurchaseCheck struct {
	Item    *models.ShopItem
	Balance int64 // buyer's balance, populated for credit purchases
}

// ShopService manages the catalog and its opening hours
type ShopService interface {
	// ActiveItems returns unexpired items
	ActiveItems(ctx context.Context) ([]*models.ShopItem, error)
	// AllItems returns the full catalog, expired included
	AllItems(ctx context.Context) ([]*models.ShopItem, error)
	GetItem(ctx context.Context, id string) (*models.ShopItem, error)
	AddItem(ctx context.Context, params AddItemParams) (*models.ShopItem, error)
	// RemoveItem deletes an item, returning it for confirmation
	RemoveItem(ctx context.Context, id string) (*models.ShopItem, error)
	// IsOpen reports whether the shop window covers the given instant
	IsOpen(now time.Time) bool
	// NextOpening returns when the shop next opens
	NextOpening(now time.Time) time.Time
	// CheckPurchase validates a purchase without moving any currency
	CheckPurchase(ctx context.Context, discordID int64, username string, itemID string, withCredits bool) (*PurchaseCheck, error)
}

// AddItemParams carries the inputs for a new shop item
type AddItemParams struct {
	Name       string
	CreditCost int64
	USDPrice   *float64 // nil when not purchasable with USD
	Duration   string   // "", "never", or {digits}{d|h|m}
	CustomID   string   // "" to auto-generate
	AddedBy    int64
}

// EconomyResetService watches total currency and performs resets
type EconomyResetService interface {
	// TotalCurrency sums all balances, savings and pools
	TotalCurrency(ctx context.Context) (int64, error)
	// CheckAndReset resets the economy when the total has reached the
	// threshold. Returns nil when no reset was needed.
	CheckAndReset(ctx context.Context) (*models.ResetResult, error)
	// Reset unconditionally resets the economy
	Reset(ctx context.Context, reason string) (*models.ResetResult, error)
	// EnsureInitialBalances tops up zero-balance accounts once per database
	EnsureInitialBalances(ctx context.Context) (int64, error)
}
