package repository

import (
	"context"
	"testing"

	"coinbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByDiscordID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByDiscordID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("account found", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, "testuser", 100)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, created.DiscordID, account.DiscordID)
		assert.Equal(t, "testuser", account.Username)
		assert.Equal(t, int64(100), account.Balance)
		assert.Equal(t, int64(0), account.Savings)
		assert.Nil(t, account.Pin)
	})
}

func TestAccountRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		account, err := repo.Create(ctx, 123456, "testuser", 100)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, int64(123456), account.DiscordID)
		assert.Equal(t, "testuser", account.Username)
		assert.Equal(t, int64(100), account.Balance)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("duplicate discord ID", func(t *testing.T) {
		_, err := repo.Create(ctx, 789012, "first", 100)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 789012, "second", 100)
		assert.Error(t, err)
	})
}

func TestAccountRepository_BalanceArithmetic(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 123456, "testuser", 100)
	require.NoError(t, err)

	t.Run("add balance", func(t *testing.T) {
		err := repo.AddBalance(ctx, 123456, 50)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(150), account.Balance)
	})

	t.Run("deduct balance", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 123456, 30)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(120), account.Balance)
	})

	t.Run("deduct more than available", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 123456, 1000)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")

		// Balance untouched after the failed deduction
		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(120), account.Balance)
	})

	t.Run("deduct from missing account", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999999, 10)
		assert.Error(t, err)
	})

	t.Run("update balance overwrite", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, 123456, 5000)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), account.Balance)
	})
}

func TestAccountRepository_SavingsAndPin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 123456, "testuser", 100)
	require.NoError(t, err)

	t.Run("set pin", func(t *testing.T) {
		err := repo.SetPin(ctx, 123456, "1234")
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, account.Pin)
		assert.Equal(t, "1234", *account.Pin)
	})

	t.Run("replace pin", func(t *testing.T) {
		err := repo.SetPin(ctx, 123456, "9876")
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, "9876", *account.Pin)
	})

	t.Run("update savings", func(t *testing.T) {
		err := repo.UpdateSavings(ctx, 123456, 75)
		require.NoError(t, err)

		account, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Equal(t, int64(75), account.Savings)
	})
}

func TestAccountRepository_TotalAndReset(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("total currency on empty table", func(t *testing.T) {
		total, err := repo.TotalCurrency(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	_, err := repo.Create(ctx, 1, "one", 100)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, "two", 200)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateSavings(ctx, 2, 50))
	_, err = repo.Create(ctx, 3, "three", 0)
	require.NoError(t, err)

	t.Run("total currency sums balance and savings", func(t *testing.T) {
		total, err := repo.TotalCurrency(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(350), total)
	})

	t.Run("top up zero balances", func(t *testing.T) {
		count, err := repo.TopUpZeroBalances(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		account, err := repo.GetByDiscordID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(100), account.Balance)

		// Non-zero balances untouched
		account, err = repo.GetByDiscordID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(200), account.Balance)
	})

	t.Run("reset all", func(t *testing.T) {
		count, err := repo.ResetAll(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		accounts, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 3)
		for _, account := range accounts {
			assert.Equal(t, int64(100), account.Balance)
			assert.Equal(t, int64(0), account.Savings)
		}
	})
}

func TestAccountRepository_UpdateUsername(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 123456, "oldname", 100)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateUsername(ctx, 123456, "newname"))

	account, err := repo.GetByDiscordID(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, "newname", account.Username)
}
