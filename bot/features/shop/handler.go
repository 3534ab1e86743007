package shop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"coinbank/bot/common"
	"coinbank/models"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	now := time.Now()
	if !f.shopService.IsOpen(now) {
		opens := f.shopService.NextOpening(now)
		common.RespondWithError(s, i, fmt.Sprintf("The shop is closed. It opens %s.",
			common.FormatDiscordTimestamp(opens, "R")))
		return
	}

	items, err := f.shopService.ActiveItems(ctx)
	if err != nil {
		log.Errorf("Error loading shop items: %v", err)
		common.RespondWithError(s, i, "Unable to load the shop. Please try again.")
		return
	}
	if len(items) == 0 {
		common.RespondWithError(s, i, "The shop is open but the shelves are empty.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🛒 Shop",
		Description: "Pick an item below. A shopkeeper will settle payment with you directly.",
		Color:       0x2ecc71,
	}
	if err := common.RespondWithEmbed(s, i, embed, buildItemSelect(items), true); err != nil {
		log.Errorf("Error responding to shop command: %v", err)
	}
}

func (f *Feature) handleItemSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	itemID := values[0]

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	item, err := f.shopService.GetItem(ctx, itemID)
	if err != nil || item == nil || item.Expired(time.Now()) {
		common.RespondWithError(s, i, "That item is no longer available.")
		return
	}

	createSession(discordID, itemID)

	content := fmt.Sprintf("**%s** — how would you like to pay?", item.Name)
	if err := common.UpdateMessage(s, i, content, buildPaymentButtons(item)); err != nil {
		log.Errorf("Error updating shop message: %v", err)
	}
}

func (f *Feature) handlePayment(s *discordgo.Session, i *discordgo.InteractionCreate, method string) {
	ctx := context.Background()

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	session := getSession(discordID, f.cfg.PurchaseTimeout)
	if session == nil {
		common.RespondWithError(s, i, "This purchase has expired. Open the shop again to restart it.")
		return
	}
	if session.Stage != stageOffered {
		common.RespondWithError(s, i, "That purchase already went through to the shopkeepers.")
		return
	}

	withCredits := method == payMethodCredits
	check, err := f.shopService.CheckPurchase(ctx, discordID, i.Member.User.Username, session.ItemID, withCredits)
	if err != nil {
		var closed *service.ErrShopClosed
		if errors.As(err, &closed) {
			common.RespondWithError(s, i, fmt.Sprintf("The shop closed while you were browsing. It opens again %s.",
				common.FormatDiscordTimestamp(closed.Opens, "R")))
			return
		}
		common.RespondWithError(s, i, err.Error())
		return
	}

	completeSession(discordID)

	notified := f.notifyShopkeepers(s, i, check.Item, method, check.Balance)

	content := fmt.Sprintf("✅ Purchase initiated for **%s**! %d shopkeeper(s) notified — one of them will settle payment with you.",
		check.Item.Name, notified)
	if err := common.UpdateMessage(s, i, content, []discordgo.MessageComponent{}); err != nil {
		log.Errorf("Error updating purchase message: %v", err)
	}
}

// notifyShopkeepers DMs every member holding the shopkeeper role with the
// purchase details, returning how many were reached.
func (f *Feature) notifyShopkeepers(s *discordgo.Session, i *discordgo.InteractionCreate, item *models.ShopItem, method string, balance int64) int {
	if f.cfg.ShopkeeperRoleID == "" {
		return 0
	}

	members, err := s.GuildMembers(i.GuildID, "", 1000)
	if err != nil {
		log.Errorf("Error listing guild members for shopkeeper notify: %v", err)
		return 0
	}

	embed := &discordgo.MessageEmbed{
		Title: "🛍️ Purchase request",
		Color: 0xf1c40f,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Item", Value: fmt.Sprintf("%s (ID: `%s`)", item.Name, item.ID), Inline: false},
			{Name: "Buyer", Value: fmt.Sprintf("<@%s>", i.Member.User.ID), Inline: true},
		},
	}
	if method == payMethodCredits {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Credit cost", Value: common.FormatBalance(item.CreditCost), Inline: true},
			&discordgo.MessageEmbedField{Name: "Buyer balance", Value: common.FormatBalance(balance), Inline: true},
		)
	} else if item.USDPrice != nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "USD price", Value: fmt.Sprintf("$%.2f", *item.USDPrice), Inline: true},
		)
	}

	notified := 0
	for _, member := range members {
		if member.User == nil || member.User.Bot || !hasRole(member, f.cfg.ShopkeeperRoleID) {
			continue
		}
		channel, err := s.UserChannelCreate(member.User.ID)
		if err != nil {
			log.Warnf("Cannot open DM with shopkeeper %s: %v", member.User.ID, err)
			continue
		}
		if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			log.Warnf("Cannot DM shopkeeper %s: %v", member.User.ID, err)
			continue
		}
		notified++
	}
	return notified
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
