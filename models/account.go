package models

import (
	"time"
)

// Account represents a Discord user's ledger record: spendable balance,
// PIN-gated savings, and the PIN itself (nil until set).
type Account struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	Savings   int64     `db:"savings"`
	Pin       *string   `db:"pin"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasPin reports whether a savings PIN has been set
func (a *Account) HasPin() bool {
	return a.Pin != nil
}

// PinMatches reports whether the supplied PIN matches the stored one.
// Returns false when no PIN is set.
func (a *Account) PinMatches(pin string) bool {
	return a.Pin != nil && *a.Pin == pin
}
