package models

import (
	"time"
)

// EconomyState is the single process-wide pool record: the slot jackpot pool,
// the lottery pot and its ticket list, and the admin-tunable slot knobs.
// LotteryTickets holds one Discord ID per ticket purchased; duplicates are
// expected and give the holder proportionally higher odds in the draw.
type EconomyState struct {
	JackpotPool             int64     `db:"jackpot_pool"`
	LotteryPot              int64     `db:"lottery_pot"`
	LotteryTickets          []int64   `db:"lottery_tickets"`
	JackpotContribution     float64   `db:"jackpot_contribution"`
	JackpotOverrideChance   float64   `db:"jackpot_override_chance"`
	InitialBalanceCheckDone bool      `db:"initial_balance_check_done"`
	UpdatedAt               time.Time `db:"updated_at"`
}

// TicketsHeldBy counts the tickets currently held by the given user
func (s *EconomyState) TicketsHeldBy(discordID int64) int {
	count := 0
	for _, id := range s.LotteryTickets {
		if id == discordID {
			count++
		}
	}
	return count
}
