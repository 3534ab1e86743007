// Package legacy parses data files written by the bot's previous
// incarnation, which persisted everything as JSON snapshots. Malformed
// entries are coerced to safe defaults instead of failing the import.
package legacy

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Account is a user entry from user_balances.json
type Account struct {
	DiscordID int64
	Balance   int64
	Savings   int64
	Pin       *string
}

// PoolState is the shared state from bot_data.json
type PoolState struct {
	JackpotPool    int64
	LotteryPot     int64
	LotteryTickets []int64
}

// Item is a catalog entry from shop_items.json
type Item struct {
	ID         string
	Name       string
	CreditCost int64
	USDPrice   *float64
	ExpiresAt  *time.Time
	AddedBy    int64
	AddedAt    *time.Time
}

// coerceInt64 flattens the number-ish values the old files accumulated:
// ints, floats and numeric strings. Anything else becomes 0.
func coerceInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return int64(f)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return int64(f)
	default:
		return 0
	}
}

// ParseAccounts decodes user_balances.json. The oldest files stored a bare
// number per user that is treated as the balance with no savings or pin.
func ParseAccounts(data []byte) ([]Account, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode user data: %w", err)
	}

	accounts := make([]Account, 0, len(raw))
	for idStr, entry := range raw {
		discordID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue // not a user id
		}

		account := Account{DiscordID: discordID}

		var number float64
		if err := json.Unmarshal(entry, &number); err == nil {
			account.Balance = int64(number)
			accounts = append(accounts, account)
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(entry, &fields); err != nil {
			continue
		}
		account.Balance = coerceInt64(fields["balance"])
		account.Savings = coerceInt64(fields["savings"])
		if pin, ok := fields["pin"].(string); ok {
			account.Pin = &pin
		}
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].DiscordID < accounts[j].DiscordID
	})
	return accounts, nil
}

// ParsePoolState decodes bot_data.json
func ParsePoolState(data []byte) (*PoolState, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode bot data: %w", err)
	}

	state := &PoolState{
		JackpotPool:    coerceInt64(raw["slot_jackpot_pool"]),
		LotteryPot:     coerceInt64(raw["lottery_pot"]),
		LotteryTickets: []int64{},
	}
	if tickets, ok := raw["lottery_tickets"].([]any); ok {
		for _, ticket := range tickets {
			if id := coerceInt64(ticket); id != 0 {
				state.LotteryTickets = append(state.LotteryTickets, id)
			}
		}
	}
	return state, nil
}

// ParseItems decodes shop_items.json, skipping entries without the two
// required fields.
func ParseItems(data []byte) ([]Item, error) {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode shop items: %w", err)
	}

	items := make([]Item, 0, len(raw))
	for id, fields := range raw {
		if _, ok := fields["name"]; !ok {
			continue
		}
		if _, ok := fields["credit_cost"]; !ok {
			continue
		}

		item := Item{
			ID:         id,
			CreditCost: coerceInt64(fields["credit_cost"]),
			AddedBy:    coerceInt64(fields["added_by"]),
		}
		if name, ok := fields["name"].(string); ok {
			item.Name = name
		}
		if price, ok := fields["usd_price"].(float64); ok && price > 0 {
			item.USDPrice = &price
		}
		item.ExpiresAt = parseLegacyTime(fields["expires_at"])
		item.AddedAt = parseLegacyTime(fields["added_at"])
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// parseLegacyTime reads the ISO timestamps the old files used, with or
// without a zone suffix. Naive timestamps are taken as UTC.
func parseLegacyTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
