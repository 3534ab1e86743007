package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coinbank/bot/common"
	"coinbank/events"
)

// subscribeAnnouncements wires event-bus notifications to the announcement
// channel. Announcements are best-effort: a failed send is logged, never
// retried.
func (b *Bot) subscribeAnnouncements() {
	if b.cfg.AnnounceChannelID == "" {
		log.Warn("No announcement channel configured, skipping announcement handlers")
		return
	}

	b.eventBus.Subscribe(events.EventTypeBigWin, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BigWinEvent)
		if !ok {
			return
		}
		b.announce(fmt.Sprintf("🎉 <@%d> just won %s playing %s!",
			e.UserID, common.FormatCoins(e.Amount), e.Game))
	})

	b.eventBus.Subscribe(events.EventTypeLotteryWin, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.LotteryWinEvent)
		if !ok {
			return
		}
		b.announce(fmt.Sprintf("🎟️ The lottery has been drawn! <@%d> wins %s with %d of %d tickets. A new round starts now.",
			e.UserID, common.FormatCoins(e.Amount), e.TicketsHeld, e.TicketsSold))
	})

	b.eventBus.Subscribe(events.EventTypeEconomyReset, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.EconomyResetEvent)
		if !ok {
			return
		}
		b.announce(fmt.Sprintf("💥 The economy has been reset (%s). %d accounts are back to %s. Savings, the jackpot pool and the lottery pot have been cleared.",
			e.Reason, e.AccountsReset, common.FormatCoins(e.StartingBalance)))
	})
}

func (b *Bot) announce(message string) {
	if _, err := b.session.ChannelMessageSend(b.cfg.AnnounceChannelID, message); err != nil {
		log.WithFields(log.Fields{
			"channelID": b.cfg.AnnounceChannelID,
			"error":     err,
		}).Error("Failed to send announcement")
	}
}
