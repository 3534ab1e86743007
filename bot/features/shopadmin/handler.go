package shopadmin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coinbank/bot/common"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func denyAccess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	common.RespondWithError(s, i, "You don't have permission to manage the shop.")
}

func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	addedBy, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	params := service.AddItemParams{AddedBy: addedBy}
	for _, o := range opt.Options {
		switch o.Name {
		case "name":
			params.Name = o.StringValue()
		case "cost":
			params.CreditCost = o.IntValue()
		case "usd_price":
			price := o.FloatValue()
			params.USDPrice = &price
		case "duration":
			params.Duration = o.StringValue()
		case "id":
			params.CustomID = o.StringValue()
		}
	}

	item, err := f.shopService.AddItem(ctx, params)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	message := fmt.Sprintf("Added **%s** (ID: `%s`) for %s", item.Name, item.ID, common.FormatCoins(item.CreditCost))
	if item.ExpiresAt != nil {
		message += fmt.Sprintf(", expires %s", common.FormatDiscordTimestamp(*item.ExpiresAt, "R"))
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to shopadmin add: %v", err)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	id := ""
	for _, o := range opt.Options {
		if o.Name == "id" {
			id = o.StringValue()
		}
	}

	item, err := f.shopService.RemoveItem(ctx, id)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Removed **%s** (ID: `%s`)", item.Name, item.ID), true); err != nil {
		log.Errorf("Error responding to shopadmin remove: %v", err)
	}
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	items, err := f.shopService.AllItems(ctx)
	if err != nil {
		common.RespondWithError(s, i, "Unable to list shop items. Please try again.")
		return
	}
	if len(items) == 0 {
		common.RespondWithError(s, i, "The catalog is empty.")
		return
	}

	now := time.Now()
	var b strings.Builder
	for _, item := range items {
		line := fmt.Sprintf("`%s` **%s** — %s Cr", item.ID, item.Name, common.FormatBalance(item.CreditCost))
		if item.PurchasableWithUSD() {
			line += fmt.Sprintf(" / $%.2f", *item.USDPrice)
		}
		if item.Expired(now) {
			line += " *(expired)*"
		} else if item.ExpiresAt != nil {
			line += fmt.Sprintf(" — expires %s", common.FormatDiscordTimestamp(*item.ExpiresAt, "R"))
		}
		b.WriteString(line + "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Shop catalog",
		Description: b.String(),
		Color:       0x3498db,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to shopadmin list: %v", err)
	}
}
