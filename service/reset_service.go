package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coinbank/config"
	"coinbank/events"
	"coinbank/models"
)

type economyResetService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewEconomyResetService creates a new economy reset service
func NewEconomyResetService(uowFactory UnitOfWorkFactory, cfg *config.Config) EconomyResetService {
	return &economyResetService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// TotalCurrency sums all balances, savings and pools
func (s *economyResetService) TotalCurrency(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := totalCurrency(ctx, uow)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

func totalCurrency(ctx context.Context, uow UnitOfWork) (int64, error) {
	accountTotal, err := uow.AccountRepository().TotalCurrency(ctx)
	if err != nil {
		return 0, err
	}
	state, err := uow.EconomyStateRepository().Get(ctx)
	if err != nil {
		return 0, err
	}
	return accountTotal + state.JackpotPool + state.LotteryPot, nil
}

// CheckAndReset resets the economy when total currency has reached the
// threshold. Returns nil when no reset was needed.
func (s *economyResetService) CheckAndReset(ctx context.Context) (*models.ResetResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := totalCurrency(ctx, uow)
	if err != nil {
		return nil, err
	}
	if total < s.cfg.ResetThreshold {
		return nil, nil
	}

	reason := fmt.Sprintf("total currency %d reached the threshold of %d", total, s.cfg.ResetThreshold)
	return s.performReset(ctx, uow, reason, total)
}

// Reset unconditionally resets the economy
func (s *economyResetService) Reset(ctx context.Context, reason string) (*models.ResetResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := totalCurrency(ctx, uow)
	if err != nil {
		return nil, err
	}
	return s.performReset(ctx, uow, reason, total)
}

// performReset sets every balance to the starting balance, zeroes savings and
// both pools, and discards outstanding lottery tickets. The jackpot tunables
// survive a reset. Commits the unit of work.
func (s *economyResetService) performReset(ctx context.Context, uow UnitOfWork, reason string, totalBefore int64) (*models.ResetResult, error) {
	count, err := uow.AccountRepository().ResetAll(ctx, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	state.JackpotPool = 0
	state.LotteryPot = 0
	state.LotteryTickets = []int64{}
	if err := stateRepo.Update(ctx, state); err != nil {
		return nil, err
	}

	result := &models.ResetResult{
		Reason:          reason,
		TotalBefore:     totalBefore,
		Threshold:       s.cfg.ResetThreshold,
		AccountsReset:   count,
		StartingBalance: s.cfg.StartingBalance,
	}

	uow.EventBus().Publish(events.EconomyResetEvent{
		Reason:          reason,
		TotalBefore:     totalBefore,
		Threshold:       s.cfg.ResetThreshold,
		AccountsReset:   count,
		StartingBalance: s.cfg.StartingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"reason":   reason,
		"accounts": count,
		"total":    totalBefore,
	}).Warn("economy reset")

	return result, nil
}

// EnsureInitialBalances performs the one-time top-up of zero-balance accounts
// to the starting balance and seeds the jackpot tunables from configuration.
// Subsequent calls are no-ops, so admin-tuned values survive restarts.
func (s *economyResetService) EnsureInitialBalances(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return 0, err
	}
	if state.InitialBalanceCheckDone {
		return 0, nil
	}

	count, err := uow.AccountRepository().TopUpZeroBalances(ctx, s.cfg.StartingBalance)
	if err != nil {
		return 0, err
	}

	state.JackpotContribution = s.cfg.JackpotContribution
	state.JackpotOverrideChance = s.cfg.JackpotOverrideChance
	state.InitialBalanceCheckDone = true
	if err := stateRepo.Update(ctx, state); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if count > 0 {
		log.WithField("accounts", count).Info("topped up zero balances")
	}
	return count, nil
}
