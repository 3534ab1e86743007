package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBigWin         EventType = "big_win"
	EventTypeLotteryWin     EventType = "lottery_win"
	EventTypeEconomyReset   EventType = "economy_reset"
	EventTypeAccountCreated EventType = "account_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BigWinEvent signals a chance-game win large enough for a public broadcast
type BigWinEvent struct {
	UserID int64
	Amount int64
	Game   string
}

func (e BigWinEvent) Type() EventType {
	return EventTypeBigWin
}

// LotteryWinEvent signals a completed lottery draw with a paid-out winner
type LotteryWinEvent struct {
	UserID      int64
	Amount      int64
	TicketsHeld int
	TicketsSold int
}

func (e LotteryWinEvent) Type() EventType {
	return EventTypeLotteryWin
}

// EconomyResetEvent signals a completed economy reset
type EconomyResetEvent struct {
	Reason          string
	TotalBefore     int64
	Threshold       int64
	AccountsReset   int64
	StartingBalance int64
}

func (e EconomyResetEvent) Type() EventType {
	return EventTypeEconomyReset
}

// AccountCreatedEvent signals a new ledger account
type AccountCreatedEvent struct {
	DiscordID       int64
	Username        string
	StartingBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the emitter
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and flushes
// them to the real bus only after the database commit succeeds. A failed
// notification never rolls back a committed currency mutation, and a rolled
// back mutation never announces anything.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction context lifetime
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
