package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"coinbank/config"
	"coinbank/events"
	"coinbank/models"
)

type lotteryService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	rng        Rand

	mu       sync.Mutex
	nextDraw time.Time
}

// NewLotteryService creates a new lottery service
func NewLotteryService(uowFactory UnitOfWorkFactory, cfg *config.Config, rng Rand) LotteryService {
	return &lotteryService{
		uowFactory: uowFactory,
		cfg:        cfg,
		rng:        rng,
	}
}

func (s *lotteryService) BuyTickets(ctx context.Context, discordID int64, username string, count int) (*models.TicketPurchase, error) {
	if count <= 0 {
		return nil, fmt.Errorf("ticket count must be positive")
	}
	cost := s.cfg.TicketPrice * int64(count)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if account.Balance < cost {
		return nil, fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, cost)
	}

	if err := uow.AccountRepository().DeductBalance(ctx, discordID, cost); err != nil {
		return nil, err
	}

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	state.LotteryPot += cost
	for i := 0; i < count; i++ {
		state.LotteryTickets = append(state.LotteryTickets, discordID)
	}
	if err := stateRepo.Update(ctx, state); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TicketPurchase{
		Count:      count,
		Cost:       cost,
		NewBalance: account.Balance - cost,
		Pot:        state.LotteryPot,
	}, nil
}

// Draw picks a winner weighted by tickets held and pays the whole pot. With
// no tickets sold it is a no-op. With tickets but an empty pot the tickets
// are discarded without a payout.
func (s *lotteryService) Draw(ctx context.Context) (*models.DrawResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if len(state.LotteryTickets) == 0 {
		return nil, nil
	}

	ticketsSold := len(state.LotteryTickets)

	if state.LotteryPot <= 0 {
		state.LotteryTickets = []int64{}
		if err := stateRepo.Update(ctx, state); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithField("tickets", ticketsSold).Warn("lottery tickets discarded, empty pot")
		return &models.DrawResult{TicketsSold: ticketsSold, Discarded: true}, nil
	}

	winnerID := state.LotteryTickets[s.rng.Intn(ticketsSold)]
	prize := state.LotteryPot
	ticketsHeld := state.TicketsHeldBy(winnerID)

	if err := uow.AccountRepository().AddBalance(ctx, winnerID, prize); err != nil {
		return nil, err
	}

	state.LotteryPot = 0
	state.LotteryTickets = []int64{}
	if err := stateRepo.Update(ctx, state); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.LotteryWinEvent{
		UserID:      winnerID,
		Amount:      prize,
		TicketsHeld: ticketsHeld,
		TicketsSold: ticketsSold,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"winner": winnerID,
		"prize":  prize,
	}).Info("lottery drawn")

	return &models.DrawResult{
		WinnerID:    winnerID,
		Prize:       prize,
		TicketsSold: ticketsSold,
		TicketsHeld: ticketsHeld,
	}, nil
}

func (s *lotteryService) Info(ctx context.Context) (*models.LotteryInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.EconomyStateRepository().Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	nextDraw := s.nextDraw
	s.mu.Unlock()

	return &models.LotteryInfo{
		Pot:         state.LotteryPot,
		TicketCount: len(state.LotteryTickets),
		TicketPrice: s.cfg.TicketPrice,
		NextDrawAt:  nextDraw,
	}, nil
}

// MarkNextDraw records when the next scheduled draw will run
func (s *lotteryService) MarkNextDraw(t time.Time) {
	s.mu.Lock()
	s.nextDraw = t
	s.mu.Unlock()
}
