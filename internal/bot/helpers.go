package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

// Пользователь ядра - это пользователь телеграма, ID берем из телеграма
func userFromUpdate(update tgbotapi.Update) model.User {
	from := update.Message.From
	if from == nil {
		return model.User{}
	}

	name := from.UserName
	if name == "" {
		name = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}

	return model.User{
		ID:          strconv.FormatInt(from.ID, 10),
		DisplayName: name,
	}
}

// Сессия живет в рамках чата и пользователя: в группе у каждого продавца свой список
func sessionID(update tgbotapi.Update) string {
	id := strconv.FormatInt(update.Message.Chat.ID, 10)
	if update.Message.From != nil {
		id += ":" + strconv.FormatInt(update.Message.From.ID, 10)
	}
	return id
}

// Номер черновика из аргументов команды, например "/used 2"
func parseDraftNumber(args string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", model.ErrNoDraft, args)
	}
	return n, nil
}

func reply(bot botkit.BotAPI, update tgbotapi.Update, text string) error {
	_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, text))
	return err
}

func replyMarkdown(bot botkit.BotAPI, update tgbotapi.Update, text string) error {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := bot.Send(msg)
	return err
}
