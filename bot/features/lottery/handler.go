package lottery

import (
	"context"
	"fmt"
	"strconv"

	"coinbank/bot/common"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	count := 1
	for _, o := range opt.Options {
		if o.Name == "count" {
			count = int(o.IntValue())
		}
	}

	result, err := f.lotteryService.BuyTickets(ctx, discordID, i.Member.User.Username, count)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Bought **%d** ticket(s) for %s. The pot is now %s. Your new balance: %s",
		result.Count, common.FormatCoins(result.Cost), common.FormatCoins(result.Pot),
		common.FormatCoins(result.NewBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to lottery buy: %v", err)
	}
}

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	info, err := f.lotteryService.Info(ctx)
	if err != nil {
		common.RespondWithError(s, i, "Unable to fetch lottery info. Please try again.")
		return
	}

	message := fmt.Sprintf("🎟️ Pot: %s · Tickets sold: **%d** · Ticket price: %s",
		common.FormatCoins(info.Pot), info.TicketCount, common.FormatCoins(info.TicketPrice))
	if !info.NextDrawAt.IsZero() {
		message += fmt.Sprintf("\nNext draw %s", common.FormatDiscordTimestamp(info.NextDrawAt, "R"))
	}

	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to lottery info: %v", err)
	}
}
