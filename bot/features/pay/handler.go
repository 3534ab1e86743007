package pay

import (
	"context"
	"fmt"
	"strconv"

	"coinbank/bot/common"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var recipient *discordgo.User
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			recipient = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		}
	}
	if recipient == nil {
		common.RespondWithError(s, i, "You must pick a recipient.")
		return
	}
	if recipient.Bot {
		common.RespondWithError(s, i, "Bots have no use for coins.")
		return
	}

	senderID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	recipientID, err := strconv.ParseInt(recipient.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing recipient ID %s: %v", recipient.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.ledgerService.Transfer(ctx, senderID, recipientID, i.Member.User.Username, recipient.Username, amount)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Paid %s to <@%s>. Your new balance: %s",
		common.FormatCoins(result.Amount), recipient.ID, common.FormatCoins(result.NewBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to pay command: %v", err)
	}
}
