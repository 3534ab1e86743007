package shop

import (
	"fmt"

	"coinbank/bot/common"
	"coinbank/models"
	"github.com/bwmarrin/discordgo"
)

const (
	selectItemID    = "shop_select_item"
	payButtonPrefix = "shop_pay_"

	payMethodCredits = "credits"
	payMethodUSD     = "usd"
)

// buildItemSelect creates the catalog dropdown
func buildItemSelect(items []*models.ShopItem) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(items))
	for _, item := range items {
		label := fmt.Sprintf("%s (%s Cr)", item.Name, common.FormatBalance(item.CreditCost))
		if item.PurchasableWithUSD() {
			label = fmt.Sprintf("%s (%s Cr / $%.2f)", item.Name, common.FormatBalance(item.CreditCost), *item.USDPrice)
		}
		if len(label) > 80 {
			label = label[:80]
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       label,
			Value:       item.ID,
			Description: fmt.Sprintf("ID: %s", item.ID),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    selectItemID,
					Placeholder: "Pick an item to buy",
					Options:     options,
				},
			},
		},
	}
}

// buildPaymentButtons creates the payment method row for an item
func buildPaymentButtons(item *models.ShopItem) []discordgo.MessageComponent {
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    fmt.Sprintf("Pay %s Cr", common.FormatBalance(item.CreditCost)),
			Style:    discordgo.PrimaryButton,
			CustomID: payButtonPrefix + payMethodCredits,
		},
	}
	if item.PurchasableWithUSD() {
		buttons = append(buttons, discordgo.Button{
			Label:    fmt.Sprintf("Pay $%.2f", *item.USDPrice),
			Style:    discordgo.SecondaryButton,
			CustomID: payButtonPrefix + payMethodUSD,
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}
