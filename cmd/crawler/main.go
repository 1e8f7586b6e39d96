package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-critique-crawler/internal/browser"
	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/database"
	"go-critique-crawler/internal/fetcher"
	"go-critique-crawler/internal/filter"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/pipeline"
	"go-critique-crawler/internal/platforms"
	"go-critique-crawler/internal/report"
	"go-critique-crawler/internal/reporter"
	"go-critique-crawler/internal/scraper"
	"go-critique-crawler/internal/storage"
)

type flags struct {
	configPath string
	keywords   []string
	platforms  []string
	maxPages   int
	noContent  bool
	outputDir  string
	pdf        bool
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "crawler",
		Short: "Collect posts criticizing exam answer explanations",
		Long: `Searches Naver Cafe, Daum Cafe, Naver Blog, Tistory, DCInside and Orbi
for the configured keywords, drops ads and off-topic posts, tags negative
posts and exports the results as CSV, JSON and XLSX.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "configs/config.yaml", "path to the YAML config")
	fl.StringSliceVar(&f.keywords, "keywords", nil, "search keywords (overrides config)")
	fl.StringSliceVar(&f.platforms, "platforms", nil, "platforms to crawl, in run order (default: all enabled)")
	fl.IntVar(&f.maxPages, "max-pages", 0, "result pages per keyword (overrides config)")
	fl.BoolVar(&f.noContent, "no-content", false, "skip fetching post bodies")
	fl.StringVar(&f.outputDir, "output", "", "output directory (overrides config)")
	fl.BoolVar(&f.pdf, "pdf", false, "also print the HTML report to PDF")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	log, err := logger.New(f.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		err = fmt.Errorf("load config: %w", err)
		alertFailure(newAlerter(config.FromEnv(), log), err, log)
		return err
	}
	names, err := applyFlags(cfg, f, cmd)
	if err != nil {
		return err
	}
	log.Infof("🔧 Config loaded. %d keywords, platforms %v", len(cfg.Keywords), names)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := browser.NewSession(browser.Options{
		Headless:  cfg.Browser.Headless,
		Timeout:   cfg.Browser.Timeout,
		UserAgent: cfg.Browser.UserAgent,
		Locale:    cfg.Browser.Locale,
	}, log)
	defer func() {
		if err := session.Close(); err != nil {
			log.Warnf("⚠️ Closing browser: %v", err)
		}
	}()

	store := storage.New(cfg.OutputDir, log)
	runner := scraper.NewRunner(filter.FromConfig(cfg), cfg, store, log)
	deps := scraper.Deps{
		Browser: session,
		Fetcher: fetcher.New(cfg.Fetcher, log),
		Log:     log,
	}.WithPageDelay(cfg.Delays.BetweenPages)

	build := func(name string) (scraper.Scraper, error) {
		return platforms.Build(name, cfg.Platforms[name], deps)
	}

	result, err := pipeline.New(runner, store, build, cfg.Delays.BetweenPlatforms, log).Run(ctx, pipeline.Options{
		Platforms:    names,
		Keywords:     cfg.Keywords,
		MaxPages:     cfg.MaxPages,
		FetchContent: cfg.FetchContent,
		RateLimits:   cfg.RateLimits,
	})
	if err != nil {
		alertFailure(newAlerter(cfg, log), err, log)
		return err
	}
	log.Infof("📦 Total posts collected: %d", result.Total())

	export, _, err := store.LatestResults()
	if err != nil {
		err = fmt.Errorf("reload export: %w", err)
		alertFailure(newAlerter(cfg, log), err, log)
		return err
	}

	// sinks run on a fresh context so an interrupted crawl still gets recorded
	sinkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	writeReport(sinkCtx, export, result.JSONPath, session, f.pdf, log)
	saveToDatabase(sinkCtx, cfg, result, log)
	sendSummary(cfg, export, log)

	log.Info("🏁 Execution finished.")
	return nil
}

// applyFlags overlays command-line values on cfg and returns the platforms to run.
func applyFlags(cfg *config.Config, f *flags, cmd *cobra.Command) ([]string, error) {
	if len(f.keywords) > 0 {
		cfg.Keywords = f.keywords
	}
	if f.maxPages > 0 {
		cfg.MaxPages = f.maxPages
	}
	if f.noContent {
		cfg.FetchContent = false
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if !cmd.Flags().Changed("platforms") {
		return cfg.EnabledPlatforms(), nil
	}
	for _, name := range f.platforms {
		if !platforms.Known(name) {
			return nil, fmt.Errorf("unknown platform %q (known: %v)", name, config.PlatformOrder)
		}
	}
	return f.platforms, nil
}

func saveToDatabase(ctx context.Context, cfg *config.Config, result *pipeline.Result, log *zap.SugaredLogger) {
	if cfg.DatabaseURL == "" {
		return
	}
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warnf("⚠️ Database unavailable: %v", err)
		return
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warnf("⚠️ %v", err)
		return
	}

	runID := uuid.NewString()
	now := time.Now()
	var records []models.PostRecord
	for _, pr := range result.Platforms {
		for _, p := range pr.Posts {
			records = append(records, models.NewPostRecord(p, runID, now))
		}
	}
	n, err := repo.SavePosts(ctx, records)
	if err != nil {
		log.Warnf("⚠️ Saved %d/%d posts to database: %v", n, len(records), err)
		return
	}
	log.Infof("🗄️ Saved %d posts to database (run %s)", n, runID)

	stored, err := repo.CountNegative(ctx)
	if err != nil {
		log.Warnf("⚠️ %v", err)
		return
	}
	log.Infof("🗄️ Negative posts stored per platform: %v", stored)
}

func writeReport(ctx context.Context, export *storage.Export, jsonPath string, printer report.Printer, pdf bool, log *zap.SugaredLogger) {
	g, err := report.NewGenerator()
	if err != nil {
		log.Warnf("⚠️ %v", err)
		return
	}
	path, err := g.WriteHTML(export, jsonPath)
	if err != nil {
		log.Warnf("⚠️ Could not write HTML report: %v", err)
		return
	}
	log.Infof("📄 Report written to %s", path)

	if !pdf {
		return
	}
	path, err = g.WritePDF(ctx, printer, export, jsonPath)
	if err != nil {
		log.Warnf("⚠️ Could not write PDF report: %v", err)
		return
	}
	log.Infof("📄 PDF report written to %s", path)
}

func sendSummary(cfg *config.Config, export *storage.Export, log *zap.SugaredLogger) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return
	}
	tg, err := reporter.NewTelegramReporter(cfg)
	if err != nil {
		log.Warnf("⚠️ %v", err)
		return
	}
	if err := tg.SendSummary(export); err != nil {
		log.Warnf("⚠️ Failed to send summary to Telegram: %v", err)
		return
	}
	log.Info("🤖 Summary sent to Telegram")
}

// alerter is the part of the Telegram reporter run failures go through.
type alerter interface {
	SendError(err error) error
}

// newAlerter returns nil when Telegram is not configured or unreachable.
func newAlerter(cfg *config.Config, log *zap.SugaredLogger) alerter {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil
	}
	tg, err := reporter.NewTelegramReporter(cfg)
	if err != nil {
		log.Warnf("⚠️ %v", err)
		return nil
	}
	return tg
}

func alertFailure(a alerter, runErr error, log *zap.SugaredLogger) {
	if a == nil {
		return
	}
	if err := a.SendError(runErr); err != nil {
		log.Warnf("⚠️ Failed to send error to Telegram: %v", err)
		return
	}
	log.Info("🤖 Error reported to Telegram")
}
