package service

import (
	"context"
	"testing"
	"time"

	"coinbank/config"
	"coinbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func shopTestConfig() *config.Config {
	cfg := testConfig()
	cfg.ShopTimezone = "UTC"
	cfg.ShopOpenHour = 10
	cfg.ShopCloseHour = 21
	return cfg
}

func newShopService(t *testing.T, cfg *config.Config, factory UnitOfWorkFactory) *shopService {
	t.Helper()
	return NewShopService(factory, cfg).(*shopService)
}

func TestShopService_IsOpen(t *testing.T) {
	service := newShopService(t, shopTestConfig(), new(MockUnitOfWorkFactory))

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, service.IsOpen(day.Add(9*time.Hour+59*time.Minute)))
	assert.True(t, service.IsOpen(day.Add(10*time.Hour)))
	assert.True(t, service.IsOpen(day.Add(15*time.Hour)))
	assert.True(t, service.IsOpen(day.Add(20*time.Hour+59*time.Minute)))
	assert.False(t, service.IsOpen(day.Add(21*time.Hour)))
	assert.False(t, service.IsOpen(day.Add(23*time.Hour)))
}

func TestShopService_IsOpen_WindowWrapsMidnight(t *testing.T) {
	cfg := shopTestConfig()
	cfg.ShopOpenHour = 22
	cfg.ShopCloseHour = 2
	service := newShopService(t, cfg, new(MockUnitOfWorkFactory))

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, service.IsOpen(day.Add(23*time.Hour)))
	assert.True(t, service.IsOpen(day.Add(1*time.Hour)))
	assert.False(t, service.IsOpen(day.Add(2*time.Hour)))
	assert.False(t, service.IsOpen(day.Add(12*time.Hour)))
}

func TestShopService_NextOpening(t *testing.T) {
	service := newShopService(t, shopTestConfig(), new(MockUnitOfWorkFactory))

	// before opening: opens today
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), service.NextOpening(now))

	// after opening: opens tomorrow
	now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC), service.NextOpening(now))
}

func TestParseItemDuration(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		input string
		want  *time.Time
	}{
		{"", nil},
		{"never", nil},
		{"2d", timePtr(now.Add(48 * time.Hour))},
		{"3h", timePtr(now.Add(3 * time.Hour))},
		{"45m", timePtr(now.Add(45 * time.Minute))},
	} {
		got, err := parseItemDuration(tc.input, now)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}

	for _, input := range []string{"2w", "abc", "d", "-1h", "0h", "1.5h"} {
		_, err := parseItemDuration(input, now)
		assert.Error(t, err, "input %q", input)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestShopService_AddItem_CustomID(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(nil, nil)
	mockItemRepo.On("Create", ctx, mock.MatchedBy(func(item *models.ShopItem) bool {
		return item.ID == "vippass" && item.Name == "VIP Pass" && item.CreditCost == 500
	})).Return(nil)

	item, err := service.AddItem(ctx, AddItemParams{
		Name:       "VIP Pass",
		CreditCost: 500,
		CustomID:   "vippass",
		AddedBy:    99,
	})

	require.NoError(t, err)
	assert.Equal(t, "vippass", item.ID)
	assert.Nil(t, item.ExpiresAt)
	mockItemRepo.AssertExpectations(t)
}

func TestShopService_AddItem_DuplicateCustomID(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)

	existing := &models.ShopItem{ID: "vippass", Name: "VIP Pass"}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(existing, nil)

	_, err := service.AddItem(ctx, AddItemParams{
		Name:       "Other",
		CreditCost: 10,
		CustomID:   "vippass",
		AddedBy:    99,
	})

	assert.ErrorContains(t, err, "already exists")
}

func TestShopService_AddItem_AutoID(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, mock.AnythingOfType("string")).Return(nil, nil)
	mockItemRepo.On("Create", ctx, mock.AnythingOfType("*models.ShopItem")).Return(nil)

	item, err := service.AddItem(ctx, AddItemParams{
		Name:       "Mystery Box",
		CreditCost: 25,
		AddedBy:    99,
	})

	require.NoError(t, err)
	assert.Len(t, item.ID, 8)
	assert.Regexp(t, "^[0-9a-f]{8}$", item.ID)
}

func TestShopService_AddItem_Validation(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	service := newShopService(t, shopTestConfig(), mockFactory)

	negPrice := -1.0

	for name, params := range map[string]AddItemParams{
		"empty name":     {Name: "", CreditCost: 10},
		"negative cost":  {Name: "x", CreditCost: -1},
		"bad usd price":  {Name: "x", CreditCost: 10, USDPrice: &negPrice},
		"bad custom id":  {Name: "x", CreditCost: 10, CustomID: "has space"},
		"bad duration":   {Name: "x", CreditCost: 10, Duration: "2w"},
		"dash custom id": {Name: "x", CreditCost: 10, CustomID: "a-b"},
	} {
		_, err := service.AddItem(ctx, params)
		assert.Error(t, err, name)
	}
	mockFactory.AssertNotCalled(t, "Create")
}

func TestShopService_ActiveItems_FiltersExpired(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	service.clock = func() time.Time { return now }

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	items := []*models.ShopItem{
		{ID: "live", ExpiresAt: &future},
		{ID: "dead", ExpiresAt: &past},
		{ID: "forever"},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockItemRepo.On("GetAll", ctx).Return(items, nil)

	active, err := service.ActiveItems(ctx)

	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "live", active[0].ID)
	assert.Equal(t, "forever", active[1].ID)
}

func TestShopService_CheckPurchase_ClosedShop(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	service := newShopService(t, shopTestConfig(), mockFactory)
	service.clock = func() time.Time {
		return time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	}

	_, err := service.CheckPurchase(ctx, 1, "alice", "vippass", true)

	var closed *ErrShopClosed
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC), closed.Opens)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestShopService_CheckPurchase_NeverDebits(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)
	service.clock = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}

	item := &models.ShopItem{ID: "vippass", Name: "VIP Pass", CreditCost: 500}
	account := &models.Account{DiscordID: 1, Username: "alice", Balance: 800}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(item, nil)
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	check, err := service.CheckPurchase(ctx, 1, "alice", "vippass", true)

	require.NoError(t, err)
	assert.Equal(t, item, check.Item)
	assert.Equal(t, int64(800), check.Balance)

	// a purchase check must never move currency
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", ctx, int64(1), int64(500))
}

func TestShopService_CheckPurchase_InsufficientCredits(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)
	service.clock = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}

	item := &models.ShopItem{ID: "vippass", CreditCost: 500}
	account := &models.Account{DiscordID: 1, Username: "alice", Balance: 100}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(item, nil)
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	_, err := service.CheckPurchase(ctx, 1, "alice", "vippass", true)

	assert.ErrorContains(t, err, "insufficient balance")
}

func TestShopService_CheckPurchase_USDRequiresPrice(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)
	service.clock = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}

	item := &models.ShopItem{ID: "vippass", CreditCost: 500}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(item, nil)

	_, err := service.CheckPurchase(ctx, 1, "alice", "vippass", false)

	assert.ErrorContains(t, err, "cannot be bought with USD")
}

func TestShopService_CheckPurchase_ExpiredItem(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockItemRepo := new(MockShopItemRepository)
	mockUoW.SetRepositories(nil, mockItemRepo, nil)

	service := newShopService(t, shopTestConfig(), mockFactory)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	service.clock = func() time.Time { return now }

	past := now.Add(-time.Minute)
	item := &models.ShopItem{ID: "vippass", CreditCost: 500, ExpiresAt: &past}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByID", ctx, "vippass").Return(item, nil)

	_, err := service.CheckPurchase(ctx, 1, "alice", "vippass", true)

	assert.ErrorContains(t, err, "not available")
}
