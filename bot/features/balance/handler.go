package balance

import (
	"context"
	"fmt"
	"strconv"

	"coinbank/bot/common"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := f.ledgerService.GetOrCreateAccount(ctx, discordID, i.Member.User.Username)
	if err != nil {
		log.Errorf("Error getting account %d: %v", discordID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	message := fmt.Sprintf("%s, your current balance: %s", displayName, common.FormatCoins(account.Balance))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}
