package service

import (
	"context"
	"testing"
	"time"

	"coinbank/config"
	"coinbank/events"
	"coinbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns a predetermined sequence of draws
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func testConfig() *config.Config {
	return &config.Config{
		StartingBalance:     100,
		BigWinThreshold:     10_000,
		RedBlackCooldown:    5 * time.Second,
		TicketPrice:         10,
		ResetThreshold:      10_000_000,
		JackpotContribution: 0.10,
	}
}

func TestResolveSlots_Jackpot(t *testing.T) {
	reels := [3]string{jackpotSymbol, jackpotSymbol, jackpotSymbol}

	outcome, winnings, newPool := resolveSlots(reels, 50, 1001, 0.10, 0, 0.99)

	assert.Equal(t, models.SlotOutcomeJackpot, outcome)
	assert.Equal(t, int64(50+500), winnings)
	assert.Equal(t, int64(501), newPool)
	// payout plus remaining pool equals the pool before the spin
	assert.Equal(t, int64(1001), (winnings-50)+newPool)
}

func TestResolveSlots_Triple(t *testing.T) {
	reels := [3]string{"🍒", "🍒", "🍒"}

	outcome, winnings, newPool := resolveSlots(reels, 50, 1000, 0.10, 0, 0.99)

	assert.Equal(t, models.SlotOutcomeTriple, outcome)
	assert.Equal(t, int64(500), winnings)
	assert.Equal(t, int64(1000), newPool)
}

func TestResolveSlots_Pair(t *testing.T) {
	for _, reels := range [][3]string{
		{"🍒", "🍒", "🍋"},
		{"🍋", "🍒", "🍒"},
		{"🍒", "🍋", "🍒"},
	} {
		outcome, winnings, newPool := resolveSlots(reels, 50, 1000, 0.10, 0, 0.99)

		assert.Equal(t, models.SlotOutcomePair, outcome, "reels %v", reels)
		assert.Equal(t, int64(100), winnings)
		assert.Equal(t, int64(1000), newPool)
	}
}

func TestResolveSlots_LossFeedsPool(t *testing.T) {
	reels := [3]string{"🍒", "🍋", "🍊"}

	outcome, winnings, newPool := resolveSlots(reels, 50, 1000, 0.10, 0, 0.99)

	assert.Equal(t, models.SlotOutcomeLoss, outcome)
	assert.Equal(t, int64(0), winnings)
	assert.Equal(t, int64(1005), newPool)
}

func TestResolveSlots_OverrideJackpot(t *testing.T) {
	reels := [3]string{"🍒", "🍋", "🍊"}

	// draw under the override chance turns a loss into a jackpot payout
	outcome, winnings, newPool := resolveSlots(reels, 50, 1000, 0.10, 0.25, 0.10)

	assert.Equal(t, models.SlotOutcomeOverrideJackpot, outcome)
	assert.Equal(t, int64(50+500), winnings)
	assert.Equal(t, int64(500), newPool)
}

func TestResolveSlots_OverrideNeverFiresOnWins(t *testing.T) {
	// a winning spin ignores the override chance entirely
	reels := [3]string{"🍒", "🍒", "🍋"}

	outcome, _, _ := resolveSlots(reels, 50, 1000, 0.10, 1.0, 0.0)

	assert.Equal(t, models.SlotOutcomePair, outcome)
}

func TestResolveDice(t *testing.T) {
	won, winnings := resolveDice(4, 4, 100)
	assert.True(t, won)
	assert.Equal(t, int64(500), winnings)

	won, winnings = resolveDice(3, 4, 100)
	assert.False(t, won)
	assert.Equal(t, int64(0), winnings)
}

func TestResolveRedBlack(t *testing.T) {
	// even rolls are red, odd rolls are black
	assert.Equal(t, "red", rollColor(2))
	assert.Equal(t, "black", rollColor(35))

	won, winnings := resolveRedBlack(2, "red", 100)
	assert.True(t, won)
	assert.Equal(t, int64(190), winnings)

	// payout floors at integer precision
	_, winnings = resolveRedBlack(2, "red", 15)
	assert.Equal(t, int64(28), winnings)

	won, winnings = resolveRedBlack(3, "red", 100)
	assert.False(t, won)
	assert.Equal(t, int64(0), winnings)
}

func newGamblingMocks(t *testing.T) (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockEconomyStateRepository) {
	t.Helper()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockStateRepo := new(MockEconomyStateRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, mockStateRepo)
	return mockUoW, mockFactory, mockAccountRepo, mockStateRepo
}

func TestGamblingService_PlaySlots_Pair(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockStateRepo := newGamblingMocks(t)

	rng := &scriptedRand{ints: []int{0, 0, 1}, floats: []float64{0.99}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 1000}
	state := &models.EconomyState{JackpotPool: 500, JackpotContribution: 0.10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(123456), int64(50)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(123456), int64(100)).Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	result, err := service.PlaySlots(ctx, 123456, "player", 50)

	require.NoError(t, err)
	assert.Equal(t, models.SlotOutcomePair, result.Outcome)
	assert.Equal(t, int64(100), result.Winnings)
	assert.Equal(t, int64(1050), result.NewBalance)
	assert.Equal(t, int64(500), result.JackpotPool)

	mockAccountRepo.AssertExpectations(t)
	mockStateRepo.AssertExpectations(t)
}

func TestGamblingService_PlaySlots_LossFeedsPool(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockStateRepo := newGamblingMocks(t)

	rng := &scriptedRand{ints: []int{0, 1, 2}, floats: []float64{0.99}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 1000}
	state := &models.EconomyState{JackpotPool: 500, JackpotContribution: 0.10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(123456), int64(50)).Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	result, err := service.PlaySlots(ctx, 123456, "player", 50)

	require.NoError(t, err)
	assert.Equal(t, models.SlotOutcomeLoss, result.Outcome)
	assert.Equal(t, int64(950), result.NewBalance)
	assert.Equal(t, int64(505), result.JackpotPool)
	assert.Equal(t, int64(505), state.JackpotPool)

	// no credit on a loss
	mockAccountRepo.AssertNotCalled(t, "AddBalance", ctx, int64(123456), int64(0))
	mockStateRepo.AssertExpectations(t)
}

func TestGamblingService_PlaySlots_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _ := newGamblingMocks(t)

	rng := &scriptedRand{ints: []int{0, 0, 0}, floats: []float64{0.99}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 30}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)

	result, err := service.PlaySlots(ctx, 123456, "player", 50)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", ctx, int64(123456), int64(50))
}

func TestGamblingService_PlaySlots_RejectsNonPositiveWager(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewGamblingService(mockFactory, testConfig(), &scriptedRand{})

	_, err := service.PlaySlots(context.Background(), 123456, "player", 0)
	assert.Error(t, err)

	_, err = service.PlaySlots(context.Background(), 123456, "player", -5)
	assert.Error(t, err)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestGamblingService_PlayDice_Win(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockStateRepo := newGamblingMocks(t)

	// Intn(6) returns 3, so the roll is 4
	rng := &scriptedRand{ints: []int{3}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 1000}
	state := &models.EconomyState{}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(123456), int64(100)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(123456), int64(500)).Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	result, err := service.PlayDice(ctx, 123456, "player", 4, 100)

	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, 4, result.Roll)
	assert.Equal(t, int64(500), result.Winnings)
	assert.Equal(t, int64(1400), result.NewBalance)
}

func TestGamblingService_PlayDice_RejectsBadGuess(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewGamblingService(mockFactory, testConfig(), &scriptedRand{})

	for _, guess := range []int{0, 7, -1} {
		_, err := service.PlayDice(context.Background(), 123456, "player", guess, 100)
		assert.Error(t, err, "guess %d", guess)
	}
	mockFactory.AssertNotCalled(t, "Create")
}

func TestGamblingService_PlayRedBlack_Cooldown(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockStateRepo := newGamblingMocks(t)

	// Intn(36) returns 1, so the roll is 2: red
	rng := &scriptedRand{ints: []int{1}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 1000}
	state := &models.EconomyState{}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(123456), int64(100)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(123456), int64(190)).Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	result, err := service.PlayRedBlack(ctx, 123456, "player", "red", 100)
	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, "red", result.Color)
	assert.Equal(t, int64(1090), result.NewBalance)

	// immediate replay is rejected without touching the database
	_, err = service.PlayRedBlack(ctx, 123456, "player", "red", 100)
	var cooldownErr *CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Greater(t, cooldownErr.Remaining, time.Duration(0))

	// once the cooldown lapses the game plays again
	svc := service.(*gamblingService)
	svc.now = func() time.Time { return time.Now().Add(6 * time.Second) }
	rng.ints = []int{1}

	result, err = service.PlayRedBlack(ctx, 123456, "player", "red", 100)
	require.NoError(t, err)
	assert.True(t, result.Won)
}

func TestGamblingService_PlayRedBlack_FailedPlayDoesNotStartCooldown(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _ := newGamblingMocks(t)

	rng := &scriptedRand{ints: []int{1}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)

	_, err := service.PlayRedBlack(ctx, 123456, "player", "red", 100)
	assert.Error(t, err)

	// the rejected play left no cooldown behind
	svc := service.(*gamblingService)
	assert.Zero(t, svc.cooldownRemaining(123456))
}

func TestGamblingService_PlayRedBlack_RejectsBadChoice(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewGamblingService(mockFactory, testConfig(), &scriptedRand{})

	_, err := service.PlayRedBlack(context.Background(), 123456, "player", "green", 100)
	assert.Error(t, err)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestGamblingService_BigWinPublishesEvent(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockStateRepo := newGamblingMocks(t)
	mockPublisher := new(MockEventPublisher)
	mockUoW.SetEventPublisher(mockPublisher)

	// triple cherries at a wager big enough to cross the threshold
	rng := &scriptedRand{ints: []int{0, 0, 0}, floats: []float64{0.99}}
	service := NewGamblingService(mockFactory, testConfig(), rng)

	account := &models.Account{DiscordID: 123456, Username: "player", Balance: 5000}
	state := &models.EconomyState{JackpotPool: 100, JackpotContribution: 0.10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByDiscordID", ctx, int64(123456)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(123456), int64(2000)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(123456), int64(20000)).Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	mockPublisher.On("Publish", events.BigWinEvent{
		UserID: 123456,
		Amount: 20000,
		Game:   "slots",
	}).Return()

	result, err := service.PlaySlots(ctx, 123456, "player", 2000)

	require.NoError(t, err)
	assert.Equal(t, models.SlotOutcomeTriple, result.Outcome)
	mockPublisher.AssertExpectations(t)
}

func TestGamblingService_SetJackpotKnobs(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockStateRepo := newGamblingMocks(t)

	service := NewGamblingService(mockFactory, testConfig(), &scriptedRand{})

	state := &models.EconomyState{JackpotPool: 100, JackpotContribution: 0.10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)
	mockStateRepo.On("Update", ctx, state).Return(nil)

	require.NoError(t, service.SetJackpotPool(ctx, 5000))
	assert.Equal(t, int64(5000), state.JackpotPool)

	require.NoError(t, service.SetJackpotContribution(ctx, 0.25))
	assert.Equal(t, 0.25, state.JackpotContribution)

	require.NoError(t, service.SetJackpotOverrideChance(ctx, 0.05))
	assert.Equal(t, 0.05, state.JackpotOverrideChance)

	assert.Error(t, service.SetJackpotPool(ctx, -1))
	assert.Error(t, service.SetJackpotContribution(ctx, 1.5))
	assert.Error(t, service.SetJackpotOverrideChance(ctx, -0.1))
}

func TestGamblingService_JackpotPool(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockStateRepo := newGamblingMocks(t)

	service := NewGamblingService(mockFactory, testConfig(), &scriptedRand{})

	state := &models.EconomyState{JackpotPool: 777}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockStateRepo.On("Get", ctx).Return(state, nil)

	pool, err := service.JackpotPool(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(777), pool)
	mockStateRepo.AssertNotCalled(t, "Update", ctx, state)
}
