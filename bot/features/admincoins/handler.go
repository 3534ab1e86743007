package admincoins

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"coinbank/bot/common"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	resetConfirmID = "admincoins_reset_confirm"
	resetCancelID  = "admincoins_reset_cancel"

	resetConfirmWindow = 30 * time.Second
)

// pendingReset guards the two-step reset confirmation. Only the admin who
// asked for the reset may confirm it, and only within the window.
var (
	pendingResetBy int64
	pendingResetAt time.Time
	pendingResetMu sync.Mutex
)

func denyAccess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	common.RespondWithError(s, i, "This command is for administrators only.")
}

func targetAndAmount(s *discordgo.Session, opt *discordgo.ApplicationCommandInteractionDataOption) (*discordgo.User, int64) {
	var user *discordgo.User
	var amount int64
	for _, o := range opt.Options {
		switch o.Name {
		case "user":
			user = o.UserValue(s)
		case "amount":
			amount = o.IntValue()
		}
	}
	return user, amount
}

func (f *Feature) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	user, amount := targetAndAmount(s, opt)
	if user == nil {
		common.RespondWithError(s, i, "You must pick a user.")
		return
	}
	targetID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	newBalance, err := f.ledgerService.Give(ctx, targetID, user.Username, amount)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Gave %s to <@%s>. Their new balance: %s",
		common.FormatCoins(amount), user.ID, common.FormatCoins(newBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to admincoins give: %v", err)
	}
}

func (f *Feature) handleTake(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	user, amount := targetAndAmount(s, opt)
	if user == nil {
		common.RespondWithError(s, i, "You must pick a user.")
		return
	}
	targetID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	taken, newBalance, err := f.ledgerService.Take(ctx, targetID, user.Username, amount)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Took %s from <@%s>. Their new balance: %s",
		common.FormatCoins(taken), user.ID, common.FormatCoins(newBalance))
	if taken < amount {
		message += fmt.Sprintf(" (they only had %s)", common.FormatCoins(taken))
	}
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to admincoins take: %v", err)
	}
}

func (f *Feature) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	user, amount := targetAndAmount(s, opt)
	if user == nil {
		common.RespondWithError(s, i, "You must pick a user.")
		return
	}
	targetID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := f.ledgerService.SetBalance(ctx, targetID, user.Username, amount); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Set <@%s>'s balance to %s", user.ID, common.FormatCoins(amount))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to admincoins set: %v", err)
	}
}

func (f *Feature) handleSetJackpot(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var amount int64
	for _, o := range opt.Options {
		if o.Name == "amount" {
			amount = o.IntValue()
		}
	}

	if err := f.gamblingService.SetJackpotPool(ctx, amount); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Jackpot pool set to %s", common.FormatCoins(amount)), false); err != nil {
		log.Errorf("Error responding to setjackpot: %v", err)
	}
}

func (f *Feature) handleSetJackpotContribution(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var rate float64
	for _, o := range opt.Options {
		if o.Name == "rate" {
			rate = o.FloatValue()
		}
	}

	if err := f.gamblingService.SetJackpotContribution(ctx, rate); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Jackpot contribution set to %.0f%% of losing wagers", rate*100), false); err != nil {
		log.Errorf("Error responding to setjackpotcontribution: %v", err)
	}
}

func (f *Feature) handleSetJackpotChance(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var chance float64
	for _, o := range opt.Options {
		if o.Name == "chance" {
			chance = o.FloatValue()
		}
	}

	if err := f.gamblingService.SetJackpotOverrideChance(ctx, chance); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Jackpot override chance set to %.2f%%", chance*100), true); err != nil {
		log.Errorf("Error responding to setjackpotchance: %v", err)
	}
}

func (f *Feature) handleTotal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	total, err := f.resetService.TotalCurrency(ctx)
	if err != nil {
		common.RespondWithError(s, i, "Unable to compute the total. Please try again.")
		return
	}
	pool, err := f.gamblingService.JackpotPool(ctx)
	if err != nil {
		common.RespondWithError(s, i, "Unable to compute the total. Please try again.")
		return
	}

	message := fmt.Sprintf("Total currency in circulation: %s (jackpot pool: %s, reset threshold: %s)",
		common.FormatCoins(total), common.FormatCoins(pool), common.FormatCoins(f.cfg.ResetThreshold))
	if err := common.Respond(s, i, message, true); err != nil {
		log.Errorf("Error responding to admincoins total: %v", err)
	}
}

func (f *Feature) handleResetRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	adminID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	pendingResetMu.Lock()
	pendingResetBy = adminID
	pendingResetAt = time.Now()
	pendingResetMu.Unlock()

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Reset everything", Style: discordgo.DangerButton, CustomID: resetConfirmID},
				discordgo.Button{Label: "Cancel", Style: discordgo.SecondaryButton, CustomID: resetCancelID},
			},
		},
	}
	embed := &discordgo.MessageEmbed{
		Title: "⚠️ Economy reset",
		Description: fmt.Sprintf(
			"This resets **every** balance to %s, wipes savings, and empties the jackpot and lottery pools. This cannot be undone.",
			common.FormatCoins(f.cfg.StartingBalance)),
		Color: 0xe74c3c,
	}
	if err := common.RespondWithEmbed(s, i, embed, components, true); err != nil {
		log.Errorf("Error responding to reset request: %v", err)
	}
}

func (f *Feature) handleResetConfirm(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	adminID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	pendingResetMu.Lock()
	valid := pendingResetBy == adminID && time.Since(pendingResetAt) <= resetConfirmWindow
	pendingResetBy = 0
	pendingResetMu.Unlock()

	if !valid {
		common.RespondWithError(s, i, "This confirmation has expired. Run the reset command again.")
		return
	}

	result, err := f.resetService.Reset(ctx, fmt.Sprintf("manual reset by admin %d", adminID))
	if err != nil {
		log.Errorf("Manual economy reset failed: %v", err)
		common.RespondWithError(s, i, "Reset failed. Check the logs.")
		return
	}

	content := fmt.Sprintf("✅ Economy reset. %d account(s) set to %s.",
		result.AccountsReset, common.FormatCoins(result.StartingBalance))
	if err := common.UpdateMessage(s, i, content, []discordgo.MessageComponent{}); err != nil {
		log.Errorf("Error updating reset message: %v", err)
	}
}

func (f *Feature) handleResetCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	pendingResetMu.Lock()
	pendingResetBy = 0
	pendingResetMu.Unlock()

	if err := common.UpdateMessage(s, i, "Reset cancelled.", []discordgo.MessageComponent{}); err != nil {
		log.Errorf("Error updating reset message: %v", err)
	}
}
