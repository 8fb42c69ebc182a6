package bot

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/session"
)

type OutreachRecorder interface {
	RecordUsed(ctx context.Context, user model.User, title string) (int64, error)
	RecordOutcome(ctx context.Context, user model.User, title string, success bool) (int64, error)
	RecordOutcomeByID(ctx context.Context, user model.User, id int64, title string, success bool) (int64, error)
}

const msgLedgerFailed = "Could not record the action, please try again."

func ViewCmdUsed(recorder OutreachRecorder, store session.Store) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		s, n, ok, err := loadDraftSession(ctx, bot, update, store)
		if err != nil || !ok {
			return err
		}

		draft, _ := s.Draft(n)

		id, err := recorder.RecordUsed(ctx, userFromUpdate(update), draft.Item.Title)
		if errors.Is(err, model.ErrLedgerWrite) {
			slog.Error("recording used", "session", s.ID, "error", err)
			return reply(bot, update, msgLedgerFailed)
		}
		if err != nil {
			return err
		}

		s.SetRecord(n, id)
		if err := store.Save(ctx, s); err != nil {
			// Строка в журнале уже есть, исход найдется по заголовку
			slog.Warn("saving session after used", "session", s.ID, "error", err)
		}

		return reply(bot, update, "Marked as used. Record the result later with /success or /fail.")
	}
}

// Исход пишется в строку, созданную этим /used. Если ее нет в сессии, берется самая новая по заголовку
func ViewCmdOutcome(recorder OutreachRecorder, store session.Store, success bool) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		s, n, ok, err := loadDraftSession(ctx, bot, update, store)
		if err != nil || !ok {
			return err
		}

		var (
			draft, _ = s.Draft(n)
			user     = userFromUpdate(update)
			affected int64
		)

		if id, ok := s.Record(n); ok {
			affected, err = recorder.RecordOutcomeByID(ctx, user, id, draft.Item.Title, success)
		} else {
			affected, err = recorder.RecordOutcome(ctx, user, draft.Item.Title, success)
		}

		if errors.Is(err, model.ErrLedgerWrite) {
			slog.Error("recording outcome", "session", s.ID, "error", err)
			return reply(bot, update, msgLedgerFailed)
		}
		if err != nil {
			return err
		}

		if affected == 0 {
			return reply(bot, update, "Mark the draft as used first with /used.")
		}

		if success {
			return reply(bot, update, "Outcome recorded: success.")
		}
		return reply(bot, update, "Outcome recorded: no success.")
	}
}
