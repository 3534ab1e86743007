package gamble

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coinbank/bot/common"
	"coinbank/models"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

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

func (f *Feature) handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var wager int64
	if o, ok := subOptions(opt)["wager"]; ok {
		wager = o.IntValue()
	}

	result, err := f.gamblingService.PlaySlots(ctx, discordID, i.Member.User.Username, wager)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	reels := strings.Join(result.Reels[:], " | ")
	var message string
	switch result.Outcome {
	case models.SlotOutcomeJackpot, models.SlotOutcomeOverrideJackpot:
		message = fmt.Sprintf("[ %s ]\n💰 **JACKPOT!** You won %s! New balance: %s",
			reels, common.FormatCoins(result.Winnings), common.FormatCoins(result.NewBalance))
	case models.SlotOutcomeTriple:
		message = fmt.Sprintf("[ %s ]\n🎉 Three of a kind! You won %s. New balance: %s",
			reels, common.FormatCoins(result.Winnings), common.FormatCoins(result.NewBalance))
	case models.SlotOutcomePair:
		message = fmt.Sprintf("[ %s ]\nA pair! You won %s. New balance: %s",
			reels, common.FormatCoins(result.Winnings), common.FormatCoins(result.NewBalance))
	default:
		message = fmt.Sprintf("[ %s ]\nNo luck. You lost %s. New balance: %s\nJackpot pool is now %s.",
			reels, common.FormatCoins(result.Wager), common.FormatCoins(result.NewBalance),
			common.FormatCoins(result.JackpotPool))
	}

	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to slots: %v", err)
	}
}

func (f *Feature) handleDice(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	var wager int64
	var guess int
	if o, ok := opts["wager"]; ok {
		wager = o.IntValue()
	}
	if o, ok := opts["guess"]; ok {
		guess = int(o.IntValue())
	}

	result, err := f.gamblingService.PlayDice(ctx, discordID, i.Member.User.Username, guess, wager)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	var message string
	if result.Won {
		message = fmt.Sprintf("🎲 Rolled a **%d** — you called it! You won %s. New balance: %s",
			result.Roll, common.FormatCoins(result.Winnings), common.FormatCoins(result.NewBalance))
	} else {
		message = fmt.Sprintf("🎲 Rolled a **%d**, you guessed %d. You lost %s. New balance: %s",
			result.Roll, result.Guess, common.FormatCoins(result.Wager), common.FormatCoins(result.NewBalance))
	}

	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to dice: %v", err)
	}
}

func (f *Feature) handleRedBlack(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := parseCaller(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := subOptions(opt)
	var wager int64
	choice := ""
	if o, ok := opts["wager"]; ok {
		wager = o.IntValue()
	}
	if o, ok := opts["choice"]; ok {
		choice = o.StringValue()
	}

	result, err := f.gamblingService.PlayRedBlack(ctx, discordID, i.Member.User.Username, choice, wager)
	if err != nil {
		var cooldownErr *service.CooldownError
		if errors.As(err, &cooldownErr) {
			common.RespondWithError(s, i, fmt.Sprintf("Slow down! Try again in %s.",
				cooldownErr.Remaining.Round(time.Second)))
			return
		}
		common.RespondWithError(s, i, err.Error())
		return
	}

	emoji := "🔴"
	if result.Color == "black" {
		emoji = "⚫"
	}
	var message string
	if result.Won {
		message = fmt.Sprintf("%s Rolled **%d** (%s) — you won %s! New balance: %s",
			emoji, result.Roll, result.Color, common.FormatCoins(result.Winnings), common.FormatCoins(result.NewBalance))
	} else {
		message = fmt.Sprintf("%s Rolled **%d** (%s), you picked %s. You lost %s. New balance: %s",
			emoji, result.Roll, result.Color, result.Choice, common.FormatCoins(result.Wager), common.FormatCoins(result.NewBalance))
	}

	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to redblack: %v", err)
	}
}
