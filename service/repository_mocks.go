package service

import (
	"context"

	"coinbank/events"
	"coinbank/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Account, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, discordID int64, username string, balance int64) (*models.Account, error) {
	args := m.Called(ctx, discordID, username, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, discordID int64, balance int64) error {
	args := m.Called(ctx, discordID, balance)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateSavings(ctx context.Context, discordID int64, savings int64) error {
	args := m.Called(ctx, discordID, savings)
	return args.Error(0)
}

func (m *MockAccountRepository) SetPin(ctx context.Context, discordID int64, pin string) error {
	args := m.Called(ctx, discordID, pin)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateUsername(ctx context.Context, discordID int64, username string) error {
	args := m.Called(ctx, discordID, username)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) TotalCurrency(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ResetAll(ctx context.Context, balance int64) (int64, error) {
	args := m.Called(ctx, balance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) TopUpZeroBalances(ctx context.Context, balance int64) (int64, error) {
	args := m.Called(ctx, balance)
	return args.Get(0).(int64), args.Error(1)
}

// MockShopItemRepository is a mock implementation of ShopItemRepository
type MockShopItemRepository struct {
	mock.Mock
}

func (m *MockShopItemRepository) GetByID(ctx context.Context, id string) (*models.ShopItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopItem), args.Error(1)
}

func (m *MockShopItemRepository) GetAll(ctx context.Context) ([]*models.ShopItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShopItem), args.Error(1)
}

func (m *MockShopItemRepository) Create(ctx context.Context, item *models.ShopItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShopItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockEconomyStateRepository is a mock implementation of EconomyStateRepository
type MockEconomyStateRepository struct {
	mock.Mock
}

func (m *MockEconomyStateRepository) Get(ctx context.Context) (*models.EconomyState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EconomyState), args.Error(1)
}

func (m *MockEconomyStateRepository) Update(ctx context.Context, state *models.EconomyState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories rather than mocked call-by-call.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo      AccountRepository
	shopItemRepo     ShopItemRepository
	economyStateRepo EconomyStateRepository
	eventPublisher   EventPublisher
}

// SetRepositories wires the repositories returned by the accessor methods.
// Pass nil for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, items ShopItemRepository, state EconomyStateRepository) {
	m.accountRepo = accounts
	m.shopItemRepo = items
	m.economyStateRepo = state
	m.eventPublisher = &nopPublisher{}
}

// SetEventPublisher overrides the default no-op publisher
func (m *MockUnitOfWork) SetEventPublisher(publisher EventPublisher) {
	m.eventPublisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) ShopItemRepository() ShopItemRepository {
	return m.shopItemRepo
}

func (m *MockUnitOfWork) EconomyStateRepository() EconomyStateRepository {
	return m.economyStateRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

type nopPublisher struct{}

func (*nopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
