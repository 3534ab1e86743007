package gamble

import (
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	gamblingService service.GamblingService
}

func New(gamblingService service.GamblingService) *Feature {
	return &Feature{
		gamblingService: gamblingService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "slots":
		f.handleSlots(s, i, options[0])
	case "dice":
		f.handleDice(s, i, options[0])
	case "redblack":
		f.handleRedBlack(s, i, options[0])
	}
}
