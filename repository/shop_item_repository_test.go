package repository

import (
	"context"
	"testing"
	"time"

	"coinbank/models"
	"coinbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopItemRepository_CRUD(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewShopItemRepository(testDB.DB)
	ctx := context.Background()

	t.Run("get missing item", func(t *testing.T) {
		item, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("create and fetch", func(t *testing.T) {
		usd := 4.99
		expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond)
		item := &models.ShopItem{
			ID:         "abc123",
			Name:       "Pizza Night",
			CreditCost: 500,
			USDPrice:   &usd,
			ExpiresAt:  &expires,
			AddedBy:    42,
			AddedAt:    time.Now(),
		}
		require.NoError(t, repo.Create(ctx, item))

		fetched, err := repo.GetByID(ctx, "abc123")
		require.NoError(t, err)
		require.NotNil(t, fetched)

		assert.Equal(t, "Pizza Night", fetched.Name)
		assert.Equal(t, int64(500), fetched.CreditCost)
		require.NotNil(t, fetched.USDPrice)
		assert.InDelta(t, 4.99, *fetched.USDPrice, 1e-9)
		require.NotNil(t, fetched.ExpiresAt)
		assert.True(t, expires.Equal(*fetched.ExpiresAt))
		assert.Equal(t, int64(42), fetched.AddedBy)
	})

	t.Run("create without usd price or expiry", func(t *testing.T) {
		item := &models.ShopItem{
			ID:         "def456",
			Name:       "Sticker",
			CreditCost: 10,
			AddedBy:    42,
			AddedAt:    time.Now(),
		}
		require.NoError(t, repo.Create(ctx, item))

		fetched, err := repo.GetByID(ctx, "def456")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Nil(t, fetched.USDPrice)
		assert.Nil(t, fetched.ExpiresAt)
		assert.False(t, fetched.PurchasableWithUSD())
		assert.False(t, fetched.Expired(time.Now()))
	})

	t.Run("duplicate ID rejected", func(t *testing.T) {
		item := &models.ShopItem{
			ID:         "abc123",
			Name:       "Duplicate",
			CreditCost: 1,
			AddedBy:    42,
			AddedAt:    time.Now(),
		}
		assert.Error(t, repo.Create(ctx, item))
	})

	t.Run("get all ordered by added_at", func(t *testing.T) {
		items, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "abc123", items[0].ID)
		assert.Equal(t, "def456", items[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		removed, err := repo.Delete(ctx, "def456")
		require.NoError(t, err)
		assert.True(t, removed)

		item, err := repo.GetByID(ctx, "def456")
		require.NoError(t, err)
		assert.Nil(t, item)

		removed, err = repo.Delete(ctx, "def456")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}
