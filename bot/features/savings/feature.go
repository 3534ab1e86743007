package savings

import (
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ledgerService service.LedgerService
}

func New(ledgerService service.LedgerService) *Feature {
	return &Feature{
		ledgerService: ledgerService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "codeset":
		f.handleCodeSet(s, i, options[0])
	case "balance":
		f.handleBalance(s, i, options[0])
	case "deposit":
		f.handleDeposit(s, i, options[0])
	case "withdraw":
		f.handleWithdraw(s, i, options[0])
	}
}
