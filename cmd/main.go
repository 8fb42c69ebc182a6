package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/api"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/app"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/bot"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/bot/middleware"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/config"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/identity"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/logging"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/notifier"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env удобен локально, в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := config.Get()
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))

	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("service stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	core, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			slog.Warn("closing resources", "error", err)
		}
	}()

	tokens, err := identity.NewTokenProvider(cfg.APITokens)
	if err != nil {
		return err
	}

	if cfg.TelegramBotToken == "" && tokens.Empty() {
		return errors.New("nothing to serve: configure telegram_bot_token or api_tokens")
	}

	g, ctx := errgroup.WithContext(ctx)

	if !tokens.Empty() {
		router := api.NewRouter(api.NewHandlers(core.Service).WithCandidateLimit(cfg.MaxCandidates), tokens, cfg.CompletionTimeout*4)
		g.Go(func() error {
			return api.Serve(ctx, cfg.HTTPAddr, router)
		})
	}

	if cfg.TelegramBotToken != "" {
		// Создаем бота, используя токен из конфига
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return err
		}

		if len(cfg.AllowedUserIDs) == 0 && cfg.TelegramChannelID == 0 {
			slog.Warn("no allowed_user_ids or telegram_channel_id configured, the bot will reject everyone")
		}

		// Все команды кроме /start доступны только участникам команды
		membersOnly := func(view botkit.ViewFunc) botkit.ViewFunc {
			return middleware.MembersOnly(cfg.AllowedUserIDs, cfg.TelegramChannelID, view)
		}

		outreachBot := botkit.New(botAPI, 0)
		outreachBot.RegisterCmdView("start", bot.ViewCmdStart())
		outreachBot.RegisterCmdView("help", bot.ViewCmdStart())
		outreachBot.RegisterCmdView("sectors", membersOnly(bot.ViewCmdSectors(core.Service)))
		outreachBot.RegisterCmdView("news", membersOnly(bot.ViewCmdNews(core.Service, core.Sessions)))
		outreachBot.RegisterCmdView("draft", membersOnly(bot.ViewCmdDraft(core.Sessions)))
		outreachBot.RegisterCmdView("used", membersOnly(bot.ViewCmdUsed(core.Service, core.Sessions)))
		outreachBot.RegisterCmdView("success", membersOnly(bot.ViewCmdOutcome(core.Service, core.Sessions, true)))
		outreachBot.RegisterCmdView("fail", membersOnly(bot.ViewCmdOutcome(core.Service, core.Sessions, false)))
		outreachBot.RegisterCmdView("stats", membersOnly(bot.ViewCmdStats(core.Service)))
		outreachBot.RegisterCmdView("history", membersOnly(bot.ViewCmdHistory(core.Service)))
		outreachBot.RegisterCmdView("end", membersOnly(bot.ViewCmdEnd(core.Sessions)))

		g.Go(func() error {
			return outreachBot.Run(ctx)
		})

		// Дайджест в канал по расписанию
		if cfg.DigestCron != "" && cfg.TelegramChannelID != 0 {
			var archiver notifier.Archiver
			if core.Archiver != nil {
				archiver = core.Archiver
			}

			digest := notifier.New(core.Service, archiver, botAPI, cfg.DigestCron, cfg.DigestSector, cfg.TelegramChannelID)
			g.Go(func() error {
				return digest.Start(ctx)
			})
		}
	}

	return g.Wait()
}
