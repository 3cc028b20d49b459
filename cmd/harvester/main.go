package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/services/browser"
	"github.com/rstatelabs/playnews/internal/services/coordinator"
	"github.com/rstatelabs/playnews/internal/services/enrich"
	"github.com/rstatelabs/playnews/internal/services/export"
	"github.com/rstatelabs/playnews/internal/services/normalizer"
	"github.com/rstatelabs/playnews/internal/services/notify"
	"github.com/rstatelabs/playnews/internal/services/review"
	"github.com/rstatelabs/playnews/internal/services/scheduler"
	"github.com/rstatelabs/playnews/internal/services/scraper"
	badgerstore "github.com/rstatelabs/playnews/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	runOnce     = flag.Bool("once", false, "Run one harvest and exit, ignoring the scheduler")
	sourceID    = flag.String("source", "", "Harvest only this source ID")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("PlayNews harvester version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup order: config, logger, banner, storage, services.
	if len(configFiles) == 0 {
		if _, err := os.Stat("playnews.toml"); err == nil {
			configFiles = append(configFiles, "playnews.toml")
		} else if _, err := os.Stat("deployments/local/playnews.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/playnews.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Bool("scheduler", config.Scheduler.Enabled).
		Msg("Harvester configuration loaded")

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
		os.Exit(1)
	}
	defer db.Close()

	newsStorage := badgerstore.NewNewsStorage(db, logger, config.Scraper.FailedInsertsDir)
	sourceStorage := badgerstore.NewSourceStorage(db, logger)
	taskStorage := badgerstore.NewTaskLogStorage(db, logger)

	session := browser.NewSession(browser.Options{
		UserAgent: config.Scraper.UserAgent,
		Headless:  config.Scraper.Headless,
	}, logger)
	defer session.Close()

	// Realtor.com runs headed with a persistent profile; its bot detection
	// rejects fresh headless fingerprints.
	realtorSession := browser.NewSession(browser.Options{
		UserAgent:  config.Scraper.UserAgent,
		Headless:   false,
		ProfileDir: config.Scraper.ProfileDir,
	}, logger)
	defer realtorSession.Close()

	registry := scraper.NewRegistry(session, realtorSession, &config.Scraper, logger)
	cleaner := normalizer.New(config.Scraper.TimeRangeDays, logger)
	fetcher := enrich.NewFetcher(config.Scraper.UserAgent, config.Scraper.EnrichTimeout, logger)
	reviewDriver := review.NewDriver(review.NewClient(&config.Review, logger), logger)
	notifier := notify.NewService(&config.Notification, logger)
	exporter := export.NewExporter(config.Export.OutputDir, logger)

	coord := coordinator.New(coordinator.Deps{
		Sources:  sourceStorage,
		News:     newsStorage,
		Tasks:    taskStorage,
		Registry: registry,
		Cleaner:  cleaner,
		Enricher: fetcher,
		Reviewer: reviewDriver,
		Notifier: notifier,
		Exporter: exporter,
		Config:   &config.Scraper,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *runOnce || config.DebugMode || !config.Scheduler.Enabled {
		logger.Info().Bool("once", *runOnce).Bool("debug_mode", config.DebugMode).Msg("Running single harvest")
		if err := coord.Run(ctx, *sourceID); err != nil {
			logger.Error().Err(err).Msg("Harvest failed")
			os.Exit(1)
		}
		return
	}

	sources, err := sourceStorage.ListActiveSources(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load sources for scheduling")
		os.Exit(1)
	}

	sched := scheduler.NewService(&config.Scheduler, coord.Run, logger)
	if sched.RegisterSources(sources) == 0 {
		logger.Warn().Msg("No schedulable sources found, running single harvest instead")
		if err := coord.Run(ctx, *sourceID); err != nil {
			logger.Error().Err(err).Msg("Harvest failed")
			os.Exit(1)
		}
		return
	}

	sched.Start()
	logger.Info().Int("jobs", sched.JobCount()).Msg("Scheduler running, press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")
	sched.Stop()
	logger.Info().Msg("Harvester stopped")
}
