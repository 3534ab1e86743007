package legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccounts_MigratesBareNumbers(t *testing.T) {
	data := []byte(`{
		"100": 250,
		"200": {"balance": 500, "savings": 50, "pin": "1234"},
		"300": {"balance": 10.9},
		"not-an-id": 5
	}`)

	accounts, err := ParseAccounts(data)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, int64(100), accounts[0].DiscordID)
	assert.Equal(t, int64(250), accounts[0].Balance)
	assert.Zero(t, accounts[0].Savings)
	assert.Nil(t, accounts[0].Pin)

	assert.Equal(t, int64(500), accounts[1].Balance)
	assert.Equal(t, int64(50), accounts[1].Savings)
	require.NotNil(t, accounts[1].Pin)
	assert.Equal(t, "1234", *accounts[1].Pin)

	// fractional balances floor, missing fields default
	assert.Equal(t, int64(10), accounts[2].Balance)
	assert.Nil(t, accounts[2].Pin)
}

func TestParseAccounts_CoercesBadFields(t *testing.T) {
	data := []byte(`{
		"100": {"balance": "750", "savings": null, "pin": 9999},
		"200": {"balance": {"nested": true}, "savings": "abc"}
	}`)

	accounts, err := ParseAccounts(data)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	// numeric strings parse, non-string pins are dropped
	assert.Equal(t, int64(750), accounts[0].Balance)
	assert.Zero(t, accounts[0].Savings)
	assert.Nil(t, accounts[0].Pin)

	// hopeless values become zero
	assert.Zero(t, accounts[1].Balance)
	assert.Zero(t, accounts[1].Savings)
}

func TestParsePoolState(t *testing.T) {
	data := []byte(`{
		"slot_jackpot_pool": 1234.7,
		"lottery_pot": 80,
		"lottery_tickets": [100, 100, 200, "300", null]
	}`)

	state, err := ParsePoolState(data)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), state.JackpotPool)
	assert.Equal(t, int64(80), state.LotteryPot)
	assert.Equal(t, []int64{100, 100, 200, 300}, state.LotteryTickets)
}

func TestParsePoolState_Defaults(t *testing.T) {
	state, err := ParsePoolState([]byte(`{}`))
	require.NoError(t, err)

	assert.Zero(t, state.JackpotPool)
	assert.Zero(t, state.LotteryPot)
	assert.Empty(t, state.LotteryTickets)
}

func TestParseItems(t *testing.T) {
	data := []byte(`{
		"abc12345": {
			"name": "VIP Pass",
			"credit_cost": 500,
			"usd_price": 4.99,
			"expires_at": "2025-01-01T00:00:00Z",
			"added_by": 42,
			"added_at": "2024-06-01T10:00:00"
		},
		"broken": {"name": "no cost"},
		"free": {"name": "Sticker", "credit_cost": 0, "usd_price": 0}
	}`)

	items, err := ParseItems(data)
	require.NoError(t, err)
	require.Len(t, items, 2)

	item := items[0]
	assert.Equal(t, "abc12345", item.ID)
	assert.Equal(t, "VIP Pass", item.Name)
	assert.Equal(t, int64(500), item.CreditCost)
	require.NotNil(t, item.USDPrice)
	assert.Equal(t, 4.99, *item.USDPrice)
	require.NotNil(t, item.ExpiresAt)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *item.ExpiresAt)
	// naive timestamps read as UTC
	require.NotNil(t, item.AddedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), *item.AddedAt)

	// zero usd price means credits only
	assert.Equal(t, "free", items[1].ID)
	assert.Nil(t, items[1].USDPrice)
}
