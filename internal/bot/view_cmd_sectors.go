package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit/markup"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/samber/lo"
)

type SectorLister interface {
	Sectors() []model.Sector
}

func ViewCmdSectors(lister SectorLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		return replyMarkdown(bot, update, formatSectors(lister.Sectors()))
	}
}

func formatSectors(sectors []model.Sector) string {
	lines := lo.Map(sectors, func(s model.Sector, i int) string {
		return fmt.Sprintf("%d\\. %s `%s`", i+1, markup.Bold(s.Name), s.ID)
	})

	return fmt.Sprintf("Sectors:\n\n%s\n\nUse /news followed by the number or id\\.", strings.Join(lines, "\n"))
}
