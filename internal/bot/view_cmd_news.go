package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit/markup"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/session"
	"github.com/samber/lo"
)

type NewsRunner interface {
	Sectors() []model.Sector
	Run(ctx context.Context, sectorArg string) (pipeline.Result, error)
}

const (
	msgNoNews          = "No news from the last week found."
	msgNothingRelevant = "Nothing relevant found."
)

// ViewCmdNews запускает весь цикл по сектору и кладет черновики в сессию.
// Старая сессия этого пользователя в чате заменяется
func ViewCmdNews(runner NewsRunner, store session.Store) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		arg := strings.TrimSpace(update.Message.CommandArguments())
		if arg == "" {
			return replyMarkdown(bot, update, "Which sector?\n\n"+formatSectors(runner.Sectors()))
		}

		if err := reply(bot, update, "Fetching news, this may take a minute..."); err != nil {
			return err
		}

		result, err := runner.Run(ctx, arg)
		switch {
		case errors.Is(err, model.ErrUnknownSector):
			return replyMarkdown(bot, update, "Unknown sector\\.\n\n"+formatSectors(runner.Sectors()))
		case errors.Is(err, model.ErrCompletion):
			slog.Warn("relevance filter failed", "sector", arg, "error", err)
			return reply(bot, update, "The text generation service is unavailable, please try again later.")
		case err != nil:
			return err
		}

		switch result.Empty {
		case pipeline.EmptyNoNews:
			return reply(bot, update, msgNoNews)
		case pipeline.EmptyNothingRelevant:
			return reply(bot, update, msgNothingRelevant)
		}

		s := session.New(sessionID(update), userFromUpdate(update), time.Now())
		s.Sector = result.Sector
		s.RunID = result.RunID
		s.Drafts = result.Drafts

		if err := store.Save(ctx, s); err != nil {
			return err
		}

		for i, draft := range result.Drafts {
			if err := replyMarkdown(bot, update, FormatDraft(i+1, draft)); err != nil {
				return err
			}
		}

		return reply(bot, update, fmt.Sprintf(
			"%d drafts for %s. Use /draft <n> to copy, /used <n> once sent, then /success <n> or /fail <n>.",
			len(result.Drafts), result.Sector.Name,
		))
	}
}

// В письмах модель любит оставлять пачки пустых строк, схлопываем их в одну
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return redundantNewLines.ReplaceAllString(strings.TrimSpace(text), "\n\n")
}

// FormatDraft - карточка черновика в MarkdownV2. Черновик с ошибкой показывается без полей
func FormatDraft(n int, draft model.EnrichedDraft) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", markup.EscapeForMarkdown(fmt.Sprintf("%d.", n)), markup.Bold(draft.Item.Title))

	if draft.Item.PubDate != "" || draft.Item.HasRegion() {
		meta := strings.Join(lo.Compact([]string{draft.Item.PubDate, draft.Item.Region}), " · ")
		fmt.Fprintf(&b, "_%s_\n", markup.EscapeForMarkdown(meta))
	}

	fmt.Fprintf(&b, "%s\n\n", markup.Link("Source", draft.Item.Link))

	if draft.Failed() {
		b.WriteString(markup.EscapeForMarkdown("⚠️ Could not prepare a draft for this item."))
		return b.String()
	}

	fmt.Fprintf(&b, "📊 Impact: %s/5\n", markup.EscapeForMarkdown(draft.Impact))
	fmt.Fprintf(&b, "👤 Persona: %s\n", markup.EscapeForMarkdown(draft.Persona))
	fmt.Fprintf(&b, "✉️ Subject: %s\n\n", markup.Bold(draft.Subject))
	b.WriteString(markup.EscapeForMarkdown(cleanText(draft.Email)))

	return b.String()
}
