package admincoins

import (
	"coinbank/bot/common"
	"coinbank/config"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

// Feature bundles the admin currency controls
type Feature struct {
	ledgerService   service.LedgerService
	gamblingService service.GamblingService
	resetService    service.EconomyResetService
	cfg             *config.Config
}

func New(ledgerService service.LedgerService, gamblingService service.GamblingService, resetService service.EconomyResetService, cfg *config.Config) *Feature {
	return &Feature{
		ledgerService:   ledgerService,
		gamblingService: gamblingService,
		resetService:    resetService,
		cfg:             cfg,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !f.isAdmin(s, i) {
		denyAccess(s, i)
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "give":
		f.handleGive(s, i, options[0])
	case "take":
		f.handleTake(s, i, options[0])
	case "set":
		f.handleSet(s, i, options[0])
	case "setjackpot":
		f.handleSetJackpot(s, i, options[0])
	case "setjackpotcontribution":
		f.handleSetJackpotContribution(s, i, options[0])
	case "setjackpotchance":
		f.handleSetJackpotChance(s, i, options[0])
	case "total":
		f.handleTotal(s, i)
	case "reset":
		f.handleResetRequest(s, i)
	}
}

// HandleInteraction handles the reset confirmation buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if !f.isAdmin(s, i) {
		denyAccess(s, i)
		return
	}

	switch i.MessageComponentData().CustomID {
	case resetConfirmID:
		f.handleResetConfirm(s, i)
	case resetCancelID:
		f.handleResetCancel(s, i)
	}
}

func (f *Feature) isAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	return common.IsAuthorizedAdmin(s, i, f.cfg.AdminChannelID)
}
