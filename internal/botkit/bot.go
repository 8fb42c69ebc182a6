package botkit

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Часть клиента телеграма, которая нужна view. *tgbotapi.BotAPI ей удовлетворяет
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

// Функция, которая реагирует на определенную команду.
// Update - любой эвент, который приходит от телеграма при взаимодействии пользователя с ботом
type ViewFunc func(ctx context.Context, bot BotAPI, update tgbotapi.Update) error

// Запуск пайплайна - десятки вызовов сервиса генерации, поэтому таймаут щедрый
const DefaultUpdateTimeout = 5 * time.Minute

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Мапа в которой храним view по командам
	cmdViews      map[string]ViewFunc
	updateTimeout time.Duration
}

func New(api *tgbotapi.BotAPI, updateTimeout time.Duration) *Bot {
	if updateTimeout <= 0 {
		updateTimeout = DefaultUpdateTimeout
	}
	return &Bot{
		api:           api,
		updateTimeout: updateTimeout,
	}
}

// Метод для регистрации View для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	if b.cmdViews == nil {
		b.cmdViews = make(map[string]ViewFunc)
	}

	b.cmdViews[cmd] = view
}

// Run обрабатывает апдейты параллельно: долгий /news одного продавца не блокирует остальных.
// При отмене контекста ждет, пока закончатся начатые обработчики
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			wg.Add(1)
			go func() {
				defer wg.Done()

				updateCtx, updateCancel := context.WithTimeout(ctx, b.updateTimeout)
				defer updateCancel()

				b.HandleUpdate(updateCtx, b.api, update)
			}()
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

// HandleUpdate роутит команду на соответствующую view
func (b *Bot) HandleUpdate(ctx context.Context, api BotAPI, update tgbotapi.Update) {
	// В какой-то view может произойти паника, ее нужно перехватить
	defer func() {
		if p := recover(); p != nil {
			slog.Error("panic recovered", "panic", p, "stack", string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	// Сообщение может содержать не только команду, но и аргументы
	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, api, update); err != nil {
		slog.Error("failed to handle update", "command", cmd, "chat_id", update.Message.Chat.ID, "error", err)

		if _, err := api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "Internal error, please try again later."),
		); err != nil {
			slog.Error("failed to send message", "error", err)
		}
	}
}
