package shop

import (
	"strings"
	"time"

	"coinbank/config"
	"coinbank/service"
	"github.com/bwmarrin/discordgo"
)

// Feature represents the shop browsing and purchase flow
type Feature struct {
	shopService service.ShopService
	cfg         *config.Config
}

// New creates a new shop feature instance
func New(shopService service.ShopService, cfg *config.Config) *Feature {
	f := &Feature{
		shopService: shopService,
		cfg:         cfg,
	}

	go f.startSessionCleanup()

	return f
}

// HandleCommand handles the /shop command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleShop(s, i)
}

// HandleInteraction handles shop component interactions
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case customID == selectItemID:
		f.handleItemSelected(s, i)
	case strings.HasPrefix(customID, payButtonPrefix):
		f.handlePayment(s, i, strings.TrimPrefix(customID, payButtonPrefix))
	}
}

// startSessionCleanup runs periodic cleanup of stale purchase sessions
func (f *Feature) startSessionCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cleanupSessions(f.cfg.PurchaseTimeout)
	}
}
