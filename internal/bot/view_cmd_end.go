package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/session"
)

func ViewCmdEnd(store session.Store) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		if err := store.Delete(ctx, sessionID(update)); err != nil {
			return err
		}
		return reply(bot, update, "Session closed.")
	}
}
