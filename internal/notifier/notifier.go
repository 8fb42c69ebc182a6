package notifier

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/bot"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit/markup"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
	"github.com/robfig/cron/v3"
)

type Runner interface {
	Run(ctx context.Context, sectorArg string) (pipeline.Result, error)
}

type Archiver interface {
	Archive(ctx context.Context, result pipeline.Result) (string, error)
}

// Notifier по расписанию прогоняет цикл для одного сектора и постит черновики в канал команды
type Notifier struct {
	runner Runner
	// Необязательный архив результатов, nil - не архивируем
	archiver Archiver
	bot      botkit.BotAPI
	// cron-выражение, например "0 8 * * 1-5"
	schedule string
	sector   string
	// id канала куда мы будем постить черновики
	channelID int64
}

func New(
	runner Runner,
	archiver Archiver,
	bot botkit.BotAPI,
	schedule string,
	sector string,
	channelID int64,
) *Notifier {
	return &Notifier{
		runner:    runner,
		archiver:  archiver,
		bot:       bot,
		schedule:  schedule,
		sector:    sector,
		channelID: channelID,
	}
}

// Start блокируется до отмены контекста. Ошибка одного запуска логируется, расписание продолжается
func (n *Notifier) Start(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc(n.schedule, func() {
		if err := n.SendDigest(ctx); err != nil {
			slog.Error("sending digest", "sector", n.sector, "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", n.schedule, err)
	}

	c.Start()
	slog.Info("digest scheduled", "schedule", n.schedule, "sector", n.sector)

	<-ctx.Done()

	// Ждем запуск, который уже идет
	<-c.Stop().Done()

	return ctx.Err()
}

// SendDigest - один запуск: цикл, архив, отправка в канал
func (n *Notifier) SendDigest(ctx context.Context) error {
	result, err := n.runner.Run(ctx, n.sector)
	if err != nil {
		return err
	}

	if n.archiver != nil {
		key, err := n.archiver.Archive(ctx, result)
		if err != nil {
			// Архив вторичен, дайджест все равно отправляем
			slog.Warn("archiving digest run", "run_id", result.RunID, "error", err)
		} else {
			slog.Debug("digest run archived", "run_id", result.RunID, "key", key)
		}
	}

	if result.Empty != pipeline.EmptyNone {
		slog.Info("digest is empty", "run_id", result.RunID, "reason", result.Empty)
		return nil
	}

	if err := n.send(fmt.Sprintf("%s: %d drafts", result.Sector.Name, len(result.Drafts)), false); err != nil {
		return err
	}

	// Упавший черновик тоже отправляем, FormatDraft покажет его в состоянии ошибки
	for i, draft := range result.Drafts {
		if err := n.send(bot.FormatDraft(i+1, draft), true); err != nil {
			return err
		}
	}

	return nil
}

func (n *Notifier) send(text string, markdown bool) error {
	if !markdown {
		text = markup.EscapeForMarkdown(text)
	}

	msg := tgbotapi.NewMessage(n.channelID, text)
	// Даем понять телеграму, чтобы это сообщение парсилось как markdown
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := n.bot.Send(msg)
	return err
}
