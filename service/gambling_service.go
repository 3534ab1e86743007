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

// slotSymbols are the reel faces. The last entry is the jackpot symbol.
var slotSymbols = []string{"🍒", "🍋", "🍊", "🍉", "🍇", "🔔", "⭐", "🍀", "💎"}

const (
	jackpotSymbol = "💎"

	tripleMultiplier = 10
	pairMultiplier   = 2
	diceMultiplier   = 5

	// red/black pays floor(wager * 1.9), kept in integers as 19/10
	redBlackPayoutNum = 19
	redBlackPayoutDen = 10

	diceSides     = 6
	redBlackSides = 36
)

// CooldownError reports a game played again too soon
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for another %s", e.Remaining.Round(time.Second))
}

type gamblingService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	rng        Rand
	now        func() time.Time

	mu        sync.Mutex
	lastPlays map[int64]time.Time // red/black per-user cooldown
}

// NewGamblingService creates a new gambling service
func NewGamblingService(uowFactory UnitOfWorkFactory, cfg *config.Config, rng Rand) GamblingService {
	return &gamblingService{
		uowFactory: uowFactory,
		cfg:        cfg,
		rng:        rng,
		now:        time.Now,
		lastPlays:  make(map[int64]time.Time),
	}
}

// resolveSlots scores a spin. overrideDraw is a uniform [0,1) draw consumed
// only on a natural loss to decide whether the jackpot pays out anyway.
// Returns the outcome, winnings (0 on loss) and the pool after the spin.
func resolveSlots(reels [3]string, wager, pool int64, contribution, overrideChance, overrideDraw float64) (models.SlotOutcome, int64, int64) {
	triple := reels[0] == reels[1] && reels[1] == reels[2]
	pair := reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]

	switch {
	case triple && reels[0] == jackpotSymbol:
		payout := pool / 2
		return models.SlotOutcomeJackpot, wager + payout, pool - payout
	case triple:
		return models.SlotOutcomeTriple, wager * tripleMultiplier, pool
	case pair:
		return models.SlotOutcomePair, wager * pairMultiplier, pool
	case overrideDraw < overrideChance:
		payout := pool / 2
		return models.SlotOutcomeOverrideJackpot, wager + payout, pool - payout
	default:
		return models.SlotOutcomeLoss, 0, pool + int64(float64(wager)*contribution)
	}
}

// resolveDice scores a dice guess
func resolveDice(roll, guess int, wager int64) (bool, int64) {
	if roll == guess {
		return true, wager * diceMultiplier
	}
	return false, 0
}

// rollColor maps a 1-36 roll to its color. Even rolls are red.
func rollColor(roll int) string {
	if roll%2 == 0 {
		return "red"
	}
	return "black"
}

// resolveRedBlack scores a color call
func resolveRedBlack(roll int, choice string, wager int64) (bool, int64) {
	if rollColor(roll) == choice {
		return true, wager * redBlackPayoutNum / redBlackPayoutDen
	}
	return false, 0
}

// playGame runs the shared wager flow: lock the account and pool state,
// verify and deduct the wager, let resolve compute winnings and the new pool,
// credit any winnings and publish a big-win event when warranted.
func (s *gamblingService) playGame(
	ctx context.Context,
	discordID int64,
	username string,
	game string,
	wager int64,
	resolve func(state *models.EconomyState) (winnings int64),
) (newBalance int64, err error) {
	if wager <= 0 {
		return 0, fmt.Errorf("wager must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateAccount(ctx, uow, discordID, username, s.cfg.StartingBalance)
	if err != nil {
		return 0, err
	}
	if account.Balance < wager {
		return 0, fmt.Errorf("insufficient balance: have %d, need %d", account.Balance, wager)
	}

	repo := uow.AccountRepository()
	if err := repo.DeductBalance(ctx, discordID, wager); err != nil {
		return 0, err
	}

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return 0, err
	}

	winnings := resolve(state)

	if winnings > 0 {
		if err := repo.AddBalance(ctx, discordID, winnings); err != nil {
			return 0, err
		}
	}
	if err := stateRepo.Update(ctx, state); err != nil {
		return 0, err
	}

	if winnings >= s.cfg.BigWinThreshold {
		uow.EventBus().Publish(events.BigWinEvent{
			UserID: discordID,
			Amount: winnings,
			Game:   game,
		})
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"game":      game,
		"wager":     wager,
		"winnings":  winnings,
	}).Info("game played")

	return account.Balance - wager + winnings, nil
}

func (s *gamblingService) PlaySlots(ctx context.Context, discordID int64, username string, wager int64) (*models.SlotResult, error) {
	result := &models.SlotResult{Wager: wager}

	newBalance, err := s.playGame(ctx, discordID, username, "slots", wager, func(state *models.EconomyState) int64 {
		reels := [3]string{
			slotSymbols[s.rng.Intn(len(slotSymbols))],
			slotSymbols[s.rng.Intn(len(slotSymbols))],
			slotSymbols[s.rng.Intn(len(slotSymbols))],
		}
		outcome, winnings, newPool := resolveSlots(
			reels, wager, state.JackpotPool,
			state.JackpotContribution, state.JackpotOverrideChance, s.rng.Float64(),
		)
		state.JackpotPool = newPool

		result.Reels = reels
		result.Outcome = outcome
		result.Winnings = winnings
		result.JackpotPool = newPool
		return winnings
	})
	if err != nil {
		return nil, err
	}

	result.NewBalance = newBalance
	return result, nil
}

func (s *gamblingService) PlayDice(ctx context.Context, discordID int64, username string, guess int, wager int64) (*models.DiceResult, error) {
	if guess < 1 || guess > diceSides {
		return nil, fmt.Errorf("guess must be between 1 and %d", diceSides)
	}

	result := &models.DiceResult{Guess: guess, Wager: wager}

	newBalance, err := s.playGame(ctx, discordID, username, "dice", wager, func(state *models.EconomyState) int64 {
		roll := s.rng.Intn(diceSides) + 1
		won, winnings := resolveDice(roll, guess, wager)

		result.Roll = roll
		result.Won = won
		result.Winnings = winnings
		return winnings
	})
	if err != nil {
		return nil, err
	}

	result.NewBalance = newBalance
	return result, nil
}

func (s *gamblingService) PlayRedBlack(ctx context.Context, discordID int64, username string, choice string, wager int64) (*models.RedBlackResult, error) {
	if choice != "red" && choice != "black" {
		return nil, fmt.Errorf("choice must be red or black")
	}
	if remaining := s.cooldownRemaining(discordID); remaining > 0 {
		return nil, &CooldownError{Remaining: remaining}
	}

	result := &models.RedBlackResult{Choice: choice, Wager: wager}

	newBalance, err := s.playGame(ctx, discordID, username, "redblack", wager, func(state *models.EconomyState) int64 {
		roll := s.rng.Intn(redBlackSides) + 1
		won, winnings := resolveRedBlack(roll, choice, wager)

		result.Roll = roll
		result.Color = rollColor(roll)
		result.Won = won
		result.Winnings = winnings
		return winnings
	})
	if err != nil {
		// Failed plays do not start a cooldown
		return nil, err
	}

	s.startCooldown(discordID)
	result.NewBalance = newBalance
	return result, nil
}

func (s *gamblingService) cooldownRemaining(discordID int64) time.Duration {
	if s.cfg.RedBlackCooldown <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.lastPlays[discordID]
	if !ok {
		return 0
	}
	remaining := s.cfg.RedBlackCooldown - s.now().Sub(last)
	if remaining <= 0 {
		delete(s.lastPlays, discordID)
		return 0
	}
	return remaining
}

func (s *gamblingService) startCooldown(discordID int64) {
	if s.cfg.RedBlackCooldown <= 0 {
		return
	}
	s.mu.Lock()
	s.lastPlays[discordID] = s.now()
	s.mu.Unlock()
}

func (s *gamblingService) SetJackpotPool(ctx context.Context, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("jackpot pool cannot be negative")
	}
	return s.updateState(ctx, func(state *models.EconomyState) {
		state.JackpotPool = amount
	})
}

func (s *gamblingService) SetJackpotContribution(ctx context.Context, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("contribution rate must be between 0 and 1")
	}
	return s.updateState(ctx, func(state *models.EconomyState) {
		state.JackpotContribution = rate
	})
}

func (s *gamblingService) SetJackpotOverrideChance(ctx context.Context, chance float64) error {
	if chance < 0 || chance > 1 {
		return fmt.Errorf("override chance must be between 0 and 1")
	}
	return s.updateState(ctx, func(state *models.EconomyState) {
		state.JackpotOverrideChance = chance
	})
}

func (s *gamblingService) JackpotPool(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.EconomyStateRepository().Get(ctx)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return state.JackpotPool, nil
}

func (s *gamblingService) updateState(ctx context.Context, mutate func(*models.EconomyState)) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stateRepo := uow.EconomyStateRepository()
	state, err := stateRepo.Get(ctx)
	if err != nil {
		return err
	}
	mutate(state)
	if err := stateRepo.Update(ctx, state); err != nil {
		return err
	}

	return uow.Commit()
}
