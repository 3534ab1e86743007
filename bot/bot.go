package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"coinbank/bot/features/admincoins"
	"coinbank/bot/features/balance"
	"coinbank/bot/features/gamble"
	"coinbank/bot/features/lottery"
	"coinbank/bot/features/pay"
	"coinbank/bot/features/savings"
	"coinbank/bot/features/shop"
	"coinbank/bot/features/shopadmin"
	"coinbank/config"
	"coinbank/events"
	"coinbank/service"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	cfg     *config.Config
	session *discordgo.Session

	ledgerService  service.LedgerService
	lotteryService service.LotteryService
	resetService   service.EconomyResetService
	eventBus       *events.Bus

	balanceFeature    *balance.Feature
	payFeature        *pay.Feature
	savingsFeature    *savings.Feature
	gambleFeature     *gamble.Feature
	lotteryFeature    *lottery.Feature
	shopFeature       *shop.Feature
	shopAdminFeature  *shopadmin.Feature
	adminCoinsFeature *admincoins.Feature
}

func New(
	cfg *config.Config,
	ledgerService service.LedgerService,
	gamblingService service.GamblingService,
	lotteryService service.LotteryService,
	shopService service.ShopService,
	resetService service.EconomyResetService,
	eventBus *events.Bus,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages

	bot := &Bot{
		cfg:               cfg,
		session:           dg,
		ledgerService:     ledgerService,
		lotteryService:    lotteryService,
		resetService:      resetService,
		eventBus:          eventBus,
		balanceFeature:    balance.New(ledgerService),
		payFeature:        pay.New(ledgerService),
		savingsFeature:    savings.New(ledgerService),
		gambleFeature:     gamble.New(gamblingService),
		lotteryFeature:    lottery.New(lotteryService),
		shopFeature:       shop.New(shopService, cfg),
		shopAdminFeature:  shopadmin.New(shopService, cfg),
		adminCoinsFeature: admincoins.New(ledgerService, gamblingService, resetService, cfg),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleComponents)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	bot.subscribeAnnouncements()

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return // guild commands only
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.balanceFeature.HandleCommand(s, i)
	case "pay":
		b.payFeature.HandleCommand(s, i)
	case "savings":
		b.savingsFeature.HandleCommand(s, i)
	case "gamble":
		b.gambleFeature.HandleCommand(s, i)
	case "lottery":
		b.lotteryFeature.HandleCommand(s, i)
	case "shop":
		b.shopFeature.HandleCommand(s, i)
	case "shopadmin":
		b.shopAdminFeature.HandleCommand(s, i)
	case "admincoins":
		b.adminCoinsFeature.HandleCommand(s, i)
	}
}

func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "shop_"):
		b.shopFeature.HandleInteraction(s, i)
	case strings.HasPrefix(customID, "admincoins_"):
		b.adminCoinsFeature.HandleInteraction(s, i)
	}
}

// handleMessageCreate grants the flat per-message reward
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	discordID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}

	if err := b.ledgerService.RewardMessage(context.Background(), discordID, m.Author.Username); err != nil {
		log.Errorf("Failed to reward message from %d: %v", discordID, err)
	}
}
