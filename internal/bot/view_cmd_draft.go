package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/session"
)

const (
	msgNoSession = "No active session. Run /news <sector> first."
	msgBadNumber = "Send the draft number, for example /draft 1."
)

// Текст без разметки, чтобы его можно было скопировать в почтовый клиент как есть
func ViewCmdDraft(store session.Store) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		s, n, ok, err := loadDraftSession(ctx, bot, update, store)
		if err != nil || !ok {
			return err
		}

		draft, _ := s.Draft(n)
		if draft.Failed() {
			return reply(bot, update, "This item has no draft.")
		}

		return reply(bot, update, draft.Clipboard())
	}
}

// Общая часть команд с номером черновика. ok=false значит, что пользователю уже ответили
func loadDraftSession(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update, store session.Store) (*session.Session, int, bool, error) {
	n, err := parseDraftNumber(update.Message.CommandArguments())
	if err != nil {
		return nil, 0, false, reply(bot, update, msgBadNumber)
	}

	s, err := store.Get(ctx, sessionID(update))
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, 0, false, reply(bot, update, msgNoSession)
	}
	if err != nil {
		return nil, 0, false, err
	}

	if _, err := s.Draft(n); err != nil {
		return nil, 0, false, reply(bot, update, "There is no such draft in the current session.")
	}

	return s, n, true, nil
}
