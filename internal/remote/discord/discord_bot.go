package discord

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/varkas/grindbot/internal/bot"
	"github.com/varkas/grindbot/internal/config"
)

// StatusProvider is what chat commands query, the engine implements it.
type StatusProvider interface {
	Status() *bot.Status
}

type Bot struct {
	discordSession *discordgo.Session
	cfg            *config.Config
	status         StatusProvider
	stop           context.CancelFunc
	useWebhook     bool
	webhookClient  *webhookClient
	itemWebhook    *webhookClient
}

// NewBot builds either a full bot-token session with command handling, or a
// plain webhook publisher when only outbound notifications are wanted.
func NewBot(cfg *config.Config, status StatusProvider, stop context.CancelFunc) (*Bot, error) {
	botInstance := &Bot{
		cfg:        cfg,
		status:     status,
		stop:       stop,
		useWebhook: cfg.Discord.UseWebhook,
	}

	if cfg.Discord.UseWebhook {
		if cfg.Discord.WebhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(cfg.Discord.WebhookURL)
		if strings.TrimSpace(cfg.Discord.ItemWebhookURL) != "" {
			botInstance.itemWebhook = newWebhookClient(cfg.Discord.ItemWebhookURL)
		}
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	botInstance.discordSession = dg

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	if err := b.discordSession.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if !slices.Contains(b.cfg.Discord.BotAdmins, m.Author.ID) {
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	prefix := strings.Split(m.Content, " ")[0]
	switch prefix {
	case "!status":
		b.handleStatusRequest(s, m)
	case "!stop":
		b.handleStopRequest(s, m)
	case "!help":
		b.handleHelpRequest(s, m)
	default:
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", prefix))
	}
}
