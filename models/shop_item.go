package models

import (
	"time"
)

// ShopItem represents a purchasable catalog entry. Expiry is a computed
// status, not a stored one: an expired item drops out of the active listing
// but stays in storage until an admin removes it.
type ShopItem struct {
	ID         string     `db:"id"`
	Name       string     `db:"name"`
	CreditCost int64      `db:"credit_cost"`
	USDPrice   *float64   `db:"usd_price"`
	ExpiresAt  *time.Time `db:"expires_at"`
	AddedBy    int64      `db:"added_by"`
	AddedAt    time.Time  `db:"added_at"`
}

// Expired reports whether the item's expiry timestamp has passed.
// Items without an expiry never expire.
func (i *ShopItem) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// PurchasableWithUSD reports whether the item carries a positive USD price
func (i *ShopItem) PurchasableWithUSD() bool {
	return i.USDPrice != nil && *i.USDPrice > 0
}
