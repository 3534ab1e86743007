package shopadmin

import (
	"coinbank/bot/common"
	"coinbank/config"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	shopService service.ShopService
	cfg         *config.Config
}

func New(shopService service.ShopService, cfg *config.Config) *Feature {
	return &Feature{
		shopService: shopService,
		cfg:         cfg,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !f.authorized(s, i) {
		denyAccess(s, i)
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "add":
		f.handleAdd(s, i, options[0])
	case "remove":
		f.handleRemove(s, i, options[0])
	case "list":
		f.handleList(s, i)
	}
}

// authorized allows admins and shopkeepers to manage the catalog
func (f *Feature) authorized(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if common.IsAuthorizedAdmin(s, i, f.cfg.AdminChannelID) {
		return true
	}
	if i.Member == nil || f.cfg.ShopkeeperRoleID == "" {
		return false
	}
	for _, r := range i.Member.Roles {
		if r == f.cfg.ShopkeeperRoleID {
			return true
		}
	}
	return false
}
