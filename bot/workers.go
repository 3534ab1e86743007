package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartLotteryDrawWorker runs the periodic lottery draw.
// Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartLotteryDrawWorker(ctx context.Context) func() {
	ticker := time.NewTicker(b.cfg.DrawInterval)
	stopChan := make(chan struct{})

	b.lotteryService.MarkNextDraw(time.Now().Add(b.cfg.DrawInterval))

	runDraw := func() {
		result, err := b.lotteryService.Draw(context.Background())
		b.lotteryService.MarkNextDraw(time.Now().Add(b.cfg.DrawInterval))
		if err != nil {
			log.Errorf("Error running lottery draw: %v", err)
			return
		}
		if result == nil {
			log.Debug("Lottery draw skipped, no tickets sold")
			return
		}
		if result.Discarded {
			log.WithField("ticketsSold", result.TicketsSold).Warn("Lottery tickets discarded, pot was empty")
			return
		}
		log.WithFields(log.Fields{
			"winnerID":    result.WinnerID,
			"prize":       result.Prize,
			"ticketsSold": result.TicketsSold,
		}).Info("Lottery drawn")
	}

	go func() {
		log.Info("Lottery draw worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info("Lottery draw worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Lottery draw worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				runDraw()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// StartEconomyResetWorker periodically checks total circulation against the
// reset threshold. Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartEconomyResetWorker(ctx context.Context) func() {
	ticker := time.NewTicker(b.cfg.ResetCheckInterval)
	stopChan := make(chan struct{})

	checkReset := func() {
		result, err := b.resetService.CheckAndReset(context.Background())
		if err != nil {
			log.Errorf("Error checking economy reset threshold: %v", err)
			return
		}
		if result != nil {
			log.WithFields(log.Fields{
				"totalBefore":   result.TotalBefore,
				"accountsReset": result.AccountsReset,
			}).Warn("Economy reset triggered by threshold")
		}
	}

	go func() {
		log.Info("Economy reset worker started")

		// Run immediately on startup
		checkReset()

		for {
			select {
			case <-ctx.Done():
				log.Info("Economy reset worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Economy reset worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				checkReset()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
