package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleStatusRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	status := b.status.Status()
	if status == nil {
		s.ChannelMessageSend(m.ChannelID, "Bot has not produced a status yet.")
		return
	}

	msg := fmt.Sprintf(
		"**%s** (level %d, %d%% HP)\nZone: %s\nStack: `%s`\nUpdated: %s",
		status.Character,
		status.Level,
		status.HealthPct,
		status.Zone,
		strings.Join(status.Stack, " > "),
		status.UpdatedAt.Format("15:04:05"),
	)
	s.ChannelMessageSend(m.ChannelID, msg)
}

func (b *Bot) handleStopRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	s.ChannelMessageSend(m.ChannelID, "Stopping the bot.")
	if b.stop != nil {
		b.stop()
	}
}

func (b *Bot) handleHelpRequest(s *discordgo.Session, m *discordgo.MessageCreate) {
	help := "Available commands:\n" +
		"`!status` - current character, zone and state stack\n" +
		"`!stop` - stop the bot\n" +
		"`!help` - this message"
	s.ChannelMessageSend(m.ChannelID, help)
}
