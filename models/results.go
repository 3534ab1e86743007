package models

import (
	"time"
)

// SlotOutcome classifies a slot spin
type SlotOutcome string

const (
	SlotOutcomeJackpot         SlotOutcome = "jackpot"
	SlotOutcomeOverrideJackpot SlotOutcome = "override_jackpot"
	SlotOutcomeTriple          SlotOutcome = "triple"
	SlotOutcomePair            SlotOutcome = "pair"
	SlotOutcomeLoss            SlotOutcome = "loss"
)

// SlotResult is the outcome of one slot spin
type SlotResult struct {
	Reels       [3]string
	Outcome     SlotOutcome
	Wager       int64
	Winnings    int64
	NewBalance  int64
	JackpotPool int64 // pool after the spin
}

// DiceResult is the outcome of one dice game
type DiceResult struct {
	Roll       int
	Guess      int
	Won        bool
	Wager      int64
	Winnings   int64
	NewBalance int64
}

// RedBlackResult is the outcome of one red/black game
type RedBlackResult struct {
	Roll       int
	Color      string // "red" for even rolls, "black" for odd
	Choice     string
	Won        bool
	Wager      int64
	Winnings   int64
	NewBalance int64
}

// TransferResult is the outcome of a completed transfer
type TransferResult struct {
	Amount     int64
	NewBalance int64 // sender's balance after the transfer
}

// SavingsResult reports both sides of an account after a savings operation
type SavingsResult struct {
	Balance int64
	Savings int64
}

// TicketPurchase is the outcome of a lottery ticket purchase
type TicketPurchase struct {
	Count      int
	Cost       int64
	NewBalance int64
	Pot        int64 // pot after the purchase
}

// LotteryInfo is a read-only projection of the current lottery state
type LotteryInfo struct {
	Pot         int64
	TicketCount int
	TicketPrice int64
	NextDrawAt  time.Time // zero when no draw is scheduled
}

// DrawResult is the outcome of a lottery draw. When the pot was empty the
// tickets are discarded without a payout and Discarded is set.
type DrawResult struct {
	WinnerID    int64
	Prize       int64
	TicketsSold int
	TicketsHeld int // winner's ticket count
	Discarded   bool
}

// ResetResult reports a completed economy reset
type ResetResult struct {
	Reason          string
	TotalBefore     int64
	Threshold       int64
	AccountsReset   int64
	StartingBalance int64
}
