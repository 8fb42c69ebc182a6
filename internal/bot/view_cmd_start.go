package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
)

const helpText = `Sales outreach assistant.

/sectors - list sectors
/news <sector> - fetch last week's news and prepare drafts
/draft <n> - draft n ready to paste into your mail client
/used <n> - mark draft n as used
/success <n>, /fail <n> - record the outcome of draft n
/stats - your outreach statistics
/history - your latest recorded actions
/end - close the current session`

func ViewCmdStart() botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		return reply(bot, update, helpText)
	}
}
