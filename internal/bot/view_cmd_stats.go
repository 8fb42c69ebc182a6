package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const historyLimit = 10

type StatsProvider interface {
	ComputeStats(ctx context.Context, user model.User) (model.OutreachStats, error)
	History(ctx context.Context, user model.User, limit int) ([]model.OutreachRecord, error)
}

func ViewCmdStats(provider StatsProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		stats, err := provider.ComputeStats(ctx, userFromUpdate(update))
		if err != nil {
			return err
		}

		return reply(bot, update, FormatStats(stats))
	}
}

func FormatStats(stats model.OutreachStats) string {
	return fmt.Sprintf(
		"Used: %d\nNot used: %d\nSuccessful: %d\nSuccess rate: %s",
		stats.UsedCount, stats.NotUsedCount, stats.SuccessCount, stats.SuccessRateText(),
	)
}

func ViewCmdHistory(provider StatsProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		records, err := provider.History(ctx, userFromUpdate(update), historyLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			return reply(bot, update, "Nothing recorded yet.")
		}

		lines := make([]string, 0, len(records))
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("%s  %s  %s", r.CreatedAt.Format("2006-01-02"), outcomeMark(r), r.Title))
		}

		return reply(bot, update, strings.Join(lines, "\n"))
	}
}

func outcomeMark(r model.OutreachRecord) string {
	switch {
	case r.Success == nil:
		return "⏳"
	case *r.Success:
		return "✅"
	default:
		return "❌"
	}
}
