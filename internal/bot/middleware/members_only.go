package middleware

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/tomakado/containers/set"
)

// MembersOnly пускает пользователей из списка и администраторов канала команды.
// Если не задано ни то, ни другое, не пускает никого
func MembersOnly(allowedIDs []int64, channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	allowed := set.New(allowedIDs...)

	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		if update.Message.From == nil {
			return nil
		}
		userID := update.Message.From.ID

		if allowed.Contains(userID) {
			return next(ctx, bot, update)
		}

		if channelID != 0 {
			admins, err := bot.GetChatAdministrators(
				tgbotapi.ChatAdministratorsConfig{
					ChatConfig: tgbotapi.ChatConfig{
						ChatID: channelID,
					},
				},
			)
			if err != nil {
				return err
			}

			// Проверка на то, что тот кто отправил команду находится в списке администраторов
			for _, admin := range admins {
				if admin.User != nil && admin.User.ID == userID {
					return next(ctx, bot, update)
				}
			}
		}

		slog.Info("rejected command from unknown user", "user_id", userID, "command", update.Message.Command())

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "You are not allowed to use this bot.")); err != nil {
			return err
		}
		return nil
	}
}
