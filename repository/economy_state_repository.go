package repository

import (
	"context"
	"fmt"

	"coinbank/database"
	"coinbank/models"
)

// EconomyStateRepository implements the EconomyStateRepository interface.
// The state lives in a single row seeded by the initial migration.
type EconomyStateRepository struct {
	q queryable
}

// NewEconomyStateRepository creates a new economy state repository
func NewEconomyStateRepository(db *database.DB) *EconomyStateRepository {
	return &EconomyStateRepository{q: db.Pool}
}

// newEconomyStateRepositoryWithTx creates a new economy state repository with a transaction
func newEconomyStateRepositoryWithTx(tx queryable) *EconomyStateRepository {
	return &EconomyStateRepository{q: tx}
}

// Get retrieves the pool state. Inside a transaction the row is locked so
// concurrent games serialize on it.
func (r *EconomyStateRepository) Get(ctx context.Context) (*models.EconomyState, error) {
	query := `
		SELECT jackpot_pool, lottery_pot, lottery_tickets,
		       jackpot_contribution, jackpot_override_chance,
		       initial_balance_check_done, updated_at
		FROM economy_state
		WHERE id = 1
		FOR UPDATE
	`

	var state models.EconomyState
	err := r.q.QueryRow(ctx, query).Scan(
		&state.JackpotPool,
		&state.LotteryPot,
		&state.LotteryTickets,
		&state.JackpotContribution,
		&state.JackpotOverrideChance,
		&state.InitialBalanceCheckDone,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get economy state: %w", err)
	}
	if state.LotteryTickets == nil {
		state.LotteryTickets = []int64{}
	}
	return &state, nil
}

// Update persists the pool state
func (r *EconomyStateRepository) Update(ctx context.Context, state *models.EconomyState) error {
	query := `
		UPDATE economy_state
		SET jackpot_pool = $1,
		    lottery_pot = $2,
		    lottery_tickets = $3,
		    jackpot_contribution = $4,
		    jackpot_override_chance = $5,
		    initial_balance_check_done = $6,
		    updated_at = NOW()
		WHERE id = 1
	`

	tickets := state.LotteryTickets
	if tickets == nil {
		tickets = []int64{}
	}

	tag, err := r.q.Exec(ctx, query,
		state.JackpotPool,
		state.LotteryPot,
		tickets,
		state.JackpotContribution,
		state.JackpotOverrideChance,
		state.InitialBalanceCheckDone,
	)
	if err != nil {
		return fmt.Errorf("failed to update economy state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("economy state row missing")
	}
	return nil
}
