package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/app"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/config"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/logging"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	var (
		sectorArg = flag.String("sector", "", "sector id, number or name")
		list      = flag.Bool("list", false, "list sectors and exit")
		archive   = flag.Bool("archive", false, "upload the run to S3 when s3_bucket is configured")
	)
	flag.Parse()

	cfg := config.Get()
	// В CLI по умолчанию шумим только предупреждениями, чтобы не мешать выводу
	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	slog.SetDefault(logging.New(level, cfg.LogFormat))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *sectorArg, *list, *archive); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, sectorArg string, list, archive bool) error {
	core, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	if list || sectorArg == "" {
		fmt.Println(renderSectors(core.Service.Sectors()))
		if sectorArg == "" && !list {
			return errors.New("pass -sector to run the pipeline")
		}
		return nil
	}

	fmt.Println(infoStyle.Render("Fetching news, this may take a minute..."))

	result, err := core.Service.Run(ctx, sectorArg)
	if err != nil {
		return err
	}

	fmt.Println(renderResult(result))

	if archive && core.Archiver != nil {
		key, err := core.Archiver.Archive(ctx, result)
		if err != nil {
			return err
		}
		fmt.Println(infoStyle.Render("archived to " + key))
	}

	return nil
}

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorError   = "#FF0000"
	colorInfo    = "#626262"
	colorBorder  = "#874BFD"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1).
			Width(100)
)

func renderSectors(sectors []model.Sector) string {
	lines := make([]string, 0, len(sectors)+1)
	lines = append(lines, titleStyle.Render("Sectors"))
	for i, s := range sectors {
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, s.Name, infoStyle.Render("("+s.ID+")")))
	}
	return strings.Join(lines, "\n")
}

func renderResult(result pipeline.Result) string {
	header := titleStyle.Render(fmt.Sprintf("%s, run %s", result.Sector.Name, result.RunID))
	drops := result.Candidates.Drops
	stats := infoStyle.Render(fmt.Sprintf(
		"candidates %d, relevant %d, dropped: stale %d, future %d, unparseable %d, duplicate %d, blocked %d, failed sources %d",
		len(result.Candidates.Entries), len(result.Relevant),
		drops.Stale, drops.Future, drops.Unparseable, drops.Duplicate, drops.Blocked, len(drops.FailedSources),
	))

	switch result.Empty {
	case pipeline.EmptyNoNews:
		return strings.Join([]string{header, stats, "No news from the last week found."}, "\n")
	case pipeline.EmptyNothingRelevant:
		return strings.Join([]string{header, stats, "Nothing relevant found."}, "\n")
	}

	blocks := []string{header, stats}
	for i, d := range result.Drafts {
		blocks = append(blocks, boxStyle.Render(renderDraft(i+1, d)))
	}
	return strings.Join(blocks, "\n")
}

func renderDraft(n int, d model.EnrichedDraft) string {
	head := fmt.Sprintf("%d. %s\n%s", n, lipgloss.NewStyle().Bold(true).Render(d.Item.Title), infoStyle.Render(d.Item.Link))
	if d.Failed() {
		return head + "\n" + errorStyle.Render("could not prepare a draft: "+d.Err.Error())
	}

	return strings.Join([]string{
		head,
		labelStyle.Render("Impact: ") + d.Impact + "/5   " + labelStyle.Render("Persona: ") + d.Persona,
		labelStyle.Render("Subject: ") + d.Subject,
		"",
		d.Email,
	}, "\n")
}
