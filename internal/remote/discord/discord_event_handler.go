package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/varkas/grindbot/internal/event"
)

var qualityColors = map[string]int{
	"Poor":      0x9d9d9d,
	"Common":    0xffffff,
	"Uncommon":  0x1eff00,
	"Rare":      0x0070dd,
	"Epic":      0xa335ee,
	"Legendary": 0xff8000,
}

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.RareLootEvent:
		if !b.cfg.Discord.EnableRareLoot {
			return nil
		}
		embed := buildLootEmbed(evt)
		if b.useWebhook && b.itemWebhook != nil {
			return b.itemWebhook.SendEmbed(ctx, embed)
		}
		if b.useWebhook {
			return b.webhookClient.SendEmbed(ctx, embed)
		}
		_, err := b.discordSession.ChannelMessageSendEmbed(b.cfg.Discord.ChannelID, embed)
		return err

	case event.LevelUpEvent:
		if !b.cfg.Discord.EnableLevelUp {
			return nil
		}
		return b.sendEventMessage(ctx, fmt.Sprintf("**[%s]** reached level **%d**!", evt.Supervisor(), evt.Level))

	case event.DeathEvent:
		message := fmt.Sprintf("**[%s]** died in %s (death %d at this spot)", evt.Supervisor(), evt.Zone, evt.DeathCount)
		if b.cfg.Discord.MentionOnDeath && b.cfg.Discord.MentionedUserID != "" {
			message = fmt.Sprintf("<@%s> %s", b.cfg.Discord.MentionedUserID, message)
		}
		return b.sendEventMessage(ctx, message)

	case event.KillswitchEvent:
		message := fmt.Sprintf("**[%s]** stopped: %s", evt.Supervisor(), evt.Reason)
		if b.cfg.Discord.MentionOnKillStop && b.cfg.Discord.MentionedUserID != "" {
			message = fmt.Sprintf("<@%s> %s", b.cfg.Discord.MentionedUserID, message)
		}
		return b.sendEventMessage(ctx, message)

	case event.ErrorMessageEvent:
		// Client error lines are combat steering input, not worth relaying.
		return nil

	case event.BotStuckEvent, event.StateChangedEvent:
		return nil
	}

	return nil
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "", nil)
	}
	_, err := b.discordSession.ChannelMessageSend(b.cfg.Discord.ChannelID, message)
	return err
}

func buildLootEmbed(evt event.RareLootEvent) *discordgo.MessageEmbed {
	color, ok := qualityColors[evt.Quality]
	if !ok {
		color = qualityColors["Common"]
	}
	return &discordgo.MessageEmbed{
		Title: evt.ItemName,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Quality", Value: evt.Quality, Inline: true},
			{Name: "Character", Value: evt.Supervisor(), Inline: true},
		},
	}
}
