package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/varkas/grindbot/internal/bot"
	"github.com/varkas/grindbot/internal/event"
)

// StatusProvider is what chat commands query, the engine implements it.
type StatusProvider interface {
	Status() *bot.Status
}

type Bot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	status StatusProvider
	logger *slog.Logger
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}
			switch strings.ToLower(update.Message.Text) {
			case "status":
				b.sendStatus()
			}
		}
	}
}

func (b *Bot) getLatestOffset() (int, error) {
	updates, err := b.bot.GetUpdates(tgbotapi.UpdateConfig{Timeout: 1})
	if err != nil {
		return 0, fmt.Errorf("error fetching telegram updates: %w", err)
	}
	offset := 0
	for _, u := range updates {
		if u.UpdateID >= offset {
			offset = u.UpdateID + 1
		}
	}
	return offset, nil
}

func (b *Bot) sendStatus() {
	status := b.status.Status()
	if status == nil {
		b.send("Bot has not produced a status yet.")
		return
	}
	b.send(fmt.Sprintf(
		"%s (level %d, %d%% HP)\nZone: %s\nStack: %s",
		status.Character, status.Level, status.HealthPct, status.Zone,
		strings.Join(status.Stack, " > "),
	))
}

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.RareLootEvent:
		b.send(fmt.Sprintf("[%s] looted %s (%s)", evt.Supervisor(), evt.ItemName, evt.Quality))
	case event.DeathEvent:
		b.send(fmt.Sprintf("[%s] died in %s", evt.Supervisor(), evt.Zone))
	case event.KillswitchEvent:
		b.send(fmt.Sprintf("[%s] stopped: %s", evt.Supervisor(), evt.Reason))
	case event.LevelUpEvent:
		b.send(fmt.Sprintf("[%s] reached level %d", evt.Supervisor(), evt.Level))
	}
	return nil
}

func (b *Bot) send(text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.logger.Error("Error sending telegram message", slog.Any("error", err))
	}
}
