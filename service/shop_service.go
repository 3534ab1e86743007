package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"coinbank/config"
	"coinbank/models"
)

var (
	itemIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	durationPattern = regexp.MustCompile(`^(\d+)([dhm])$`)
)

const autoIDAttempts = 5

// ErrShopClosed is returned for purchase attempts outside opening hours
type ErrShopClosed struct {
	Opens time.Time
}

func (e *ErrShopClosed) Error() string {
	return fmt.Sprintf("shop is closed, opens %s", e.Opens.Format("15:04 MST"))
}

type shopService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	loc        *time.Location
	clock      func() time.Time
}

// NewShopService creates a new shop service. An unknown timezone falls back
// to UTC rather than failing startup.
func NewShopService(uowFactory UnitOfWorkFactory, cfg *config.Config) ShopService {
	loc, err := time.LoadLocation(cfg.ShopTimezone)
	if err != nil {
		log.WithError(err).WithField("timezone", cfg.ShopTimezone).Warn("unknown shop timezone, using UTC")
		loc = time.UTC
	}
	return &shopService{
		uowFactory: uowFactory,
		cfg:        cfg,
		loc:        loc,
		clock:      time.Now,
	}
}

// IsOpen reports whether the shop window covers the given instant. The window
// may wrap past midnight, in which case "open" means after opening OR before
// closing.
func (s *shopService) IsOpen(now time.Time) bool {
	local := now.In(s.loc)
	minutes := local.Hour()*60 + local.Minute()
	open := s.cfg.ShopOpenHour*60 + s.cfg.ShopOpenMinute
	close := s.cfg.ShopCloseHour*60 + s.cfg.ShopCloseMinute

	if open == close {
		return true // degenerate window, always open
	}
	if open > close {
		return minutes >= open || minutes < close
	}
	return open <= minutes && minutes < close
}

// NextOpening returns when the shop next opens
func (s *shopService) NextOpening(now time.Time) time.Time {
	local := now.In(s.loc)
	opening := time.Date(local.Year(), local.Month(), local.Day(),
		s.cfg.ShopOpenHour, s.cfg.ShopOpenMinute, 0, 0, s.loc)
	if !opening.After(local) {
		opening = opening.AddDate(0, 0, 1)
	}
	return opening
}

func (s *shopService) ActiveItems(ctx context.Context) ([]*models.ShopItem, error) {
	items, err := s.AllItems(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	active := make([]*models.ShopItem, 0, len(items))
	for _, item := range items {
		if !item.Expired(now) {
			active = append(active, item)
		}
	}
	return active, nil
}

func (s *shopService) AllItems(ctx context.Context) ([]*models.ShopItem, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ShopItemRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return items, nil
}

func (s *shopService) GetItem(ctx context.Context, id string) (*models.ShopItem, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ShopItemRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

// parseItemDuration resolves the listing duration grammar relative to now.
// "" and "never" mean no expiry. Otherwise {digits}{d|h|m}.
func parseItemDuration(duration string, now time.Time) (*time.Time, error) {
	if duration == "" || duration == "never" {
		return nil, nil
	}
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil {
		return nil, fmt.Errorf("invalid duration %q: use a number followed by d, h or m, or \"never\"", duration)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid duration %q: amount must be positive", duration)
	}

	var expires time.Time
	switch match[2] {
	case "d":
		expires = now.Add(time.Duration(n) * 24 * time.Hour)
	case "h":
		expires = now.Add(time.Duration(n) * time.Hour)
	case "m":
		expires = now.Add(time.Duration(n) * time.Minute)
	}
	return &expires, nil
}

func (s *shopService) AddItem(ctx context.Context, params AddItemParams) (*models.ShopItem, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if params.CreditCost < 0 {
		return nil, fmt.Errorf("credit cost cannot be negative")
	}
	if params.USDPrice != nil && *params.USDPrice <= 0 {
		return nil, fmt.Errorf("usd price must be positive")
	}
	if params.CustomID != "" && !itemIDPattern.MatchString(params.CustomID) {
		return nil, fmt.Errorf("item id must be alphanumeric")
	}

	now := s.clock()
	expiresAt, err := parseItemDuration(params.Duration, now)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.ShopItemRepository()

	id := params.CustomID
	if id != "" {
		existing, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("item id %s already exists", id)
		}
	} else {
		id, err = generateItemID(ctx, repo)
		if err != nil {
			return nil, err
		}
	}

	item := &models.ShopItem{
		ID:         id,
		Name:       params.Name,
		CreditCost: params.CreditCost,
		USDPrice:   params.USDPrice,
		ExpiresAt:  expiresAt,
		AddedBy:    params.AddedBy,
		AddedAt:    now,
	}
	if err := repo.Create(ctx, item); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"id":   item.ID,
		"name": item.Name,
	}).Info("shop item added")

	return item, nil
}

// generateItemID draws short random ids until one is free
func generateItemID(ctx context.Context, repo ShopItemRepository) (string, error) {
	for i := 0; i < autoIDAttempts; i++ {
		u := uuid.New()
		id := hex.EncodeToString(u[:])[:8]

		existing, err := repo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique item id")
}

func (s *shopService) RemoveItem(ctx context.Context, id string) (*models.ShopItem, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.ShopItemRepository()
	item, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s not found", id)
	}
	if _, err := repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

// CheckPurchase validates a purchase without moving any currency. Payment is
// settled out of band by an operator.
func (s *shopService) CheckPurchase(ctx context.Context, discordID int64, username string, itemID string, withCredits bool) (*PurchaseCheck, error) {
	now := s.clock()
	if !s.IsOpen(now) {
		return nil, &ErrShopClosed{Opens: s.NextOpening(now)}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ShopItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Expired(now) {
		return nil, fmt.Errorf("item %s is not available", itemID)
	}

	check := &PurchaseCheck{Item: item}

	if withCredits {
		account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
		if err != nil {
			return nil, err
		}
		if account.Balance < item.CreditCost {
			return nil, fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, item.CreditCost)
		}
		check.Balance = account.Balance
	} else if !item.PurchasableWithUSD() {
		return nil, fmt.Errorf("item %s cannot be bought with USD", itemID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return check, nil
}
