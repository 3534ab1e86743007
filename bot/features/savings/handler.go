package savings

import (
	"context"
	"fmt"
	"strconv"

	"coinbank/bot/common"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// All savings responses are ephemeral so PINs and amounts stay private.

func parseCaller(i *discordgo.InteractionCreate) (int64, error) {
	return strconv.ParseInt(i.Member.User.ID, 10, 64)
}

func subOptions(opt *discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opt.Options))
	for _, o := range opt.Options {
		m[o.Name] = o
	}
	return m
}

func (f *Feature) handleCodeSet(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	pin := ""
	if o, ok := opts["pin"]; ok {
		pin = o.StringValue()
	}

	replaced, err := f.ledgerService.SetPin(ctx, discordID, i.Member.User.Username, pin)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := "Savings PIN set."
	if replaced {
		message = "Savings PIN replaced."
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to codeset: %v", err)
	}
}

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	pin := ""
	if o, ok := opts["pin"]; ok {
		pin = o.StringValue()
	}

	result, err := f.ledgerService.SavingsBalance(ctx, discordID, i.Member.User.Username, pin)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Savings: %s · Wallet: %s",
		common.FormatCoins(result.Savings), common.FormatCoins(result.Balance))
	if err := common.Respond(s, i, message, true); err != nil {
		log.Errorf("Error responding to savings balance: %v", err)
	}
}

func (f *Feature) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	var amount int64
	pin := ""
	if o, ok := opts["amount"]; ok {
		amount = o.IntValue()
	}
	if o, ok := opts["pin"]; ok {
		pin = o.StringValue()
	}

	result, err := f.ledgerService.Deposit(ctx, discordID, i.Member.User.Username, amount, pin)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Deposited %s. Savings: %s · Wallet: %s",
		common.FormatCoins(amount), common.FormatCoins(result.Savings), common.FormatCoins(result.Balance))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to deposit: %v", err)
	}
}

func (f *Feature) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	var amount int64
	pin := ""
	if o, ok := opts["amount"]; ok {
		amount = o.IntValue()
	}
	if o, ok := opts["pin"]; ok {
		pin = o.StringValue()
	}

	result, err := f.ledgerService.Withdraw(ctx, discordID, i.Member.User.Username, amount, pin)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Withdrew %s. Savings: %s · Wallet: %s",
		common.FormatCoins(amount), common.FormatCoins(result.Savings), common.FormatCoins(result.Balance))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to withdraw: %v", err)
	}
}
