package lottery

import (
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	lotteryService service.LotteryService
}

func New(lotteryService service.LotteryService) *Feature {
	return &Feature{
		lotteryService: lotteryService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "buy":
		f.handleBuy(s, i, options[0])
	case "info":
		f.handleInfo(s, i)
	}
}
