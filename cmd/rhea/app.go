package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/logging"
	"github.com/cognicore/rhea/internal/scrape"
	"github.com/cognicore/rhea/pkg/rhea"
	"github.com/cognicore/rhea/pkg/rhea/config"
	"github.com/cognicore/rhea/pkg/rhea/provider"
	"github.com/cognicore/rhea/pkg/rhea/store"
	"github.com/cognicore/rhea/pkg/rhea/store/memstore"
	"github.com/cognicore/rhea/pkg/rhea/store/sqlite"
)

// sourceLocal names articles from the advisories file.
const sourceLocal = "LOCAL"

func loadConfig(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return sqlite.OpenSQLite(ctx, cfg.Store.Path)
	default:
		return memstore.New(), nil
	}
}

// buildBot wires the store, data files and metrics into a Bot.
func buildBot(ctx context.Context, cfg *config.Config, logger *zap.Logger, rec rhea.Recorder) (*rhea.Bot, func(), error) {
	components, err := cfg.Loader().Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load data files: %w", err)
	}
	vocab := components.Lexicon.Stats()
	logger.Info("vocabulary loaded",
		zap.Int("symptoms", vocab.Symptoms),
		zap.Int("diseases", vocab.Diseases),
		zap.Int("emergency_tags", vocab.EmergencyTags),
		zap.Int("keywords", vocab.Keywords))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	bot, err := rhea.New(rhea.Options{
		Store:           st,
		Lexicon:         components.Lexicon,
		Catalog:         components.Catalog,
		Logger:          logger,
		Metrics:         rec,
		DefaultLanguage: cfg.DefaultLanguage(),
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := bot.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}
	return bot, cleanup, nil
}

// providers returns the advisory sources in ingestion order: WHO, MOHFW,
// then the optional local file.
func providers(cfg *config.Config, logger *zap.Logger) []provider.Provider {
	var out []provider.Provider
	if cfg.Scrape.Enabled {
		client := scrape.New(cfg.ScrapeClient(), nil, logger)
		out = append(out,
			provider.NewLive(provider.SourceWHO, provider.CategoryGeneral,
				client.WHO(cfg.Scrape.WHOURLs), provider.WHOFallback(), logger),
			provider.NewLive(provider.SourceMOHFW, provider.CategoryAdvisory,
				client.MOHFW(cfg.Scrape.MOHFWURLs), provider.MOHFWFallback(), logger),
		)
	} else {
		out = append(out, provider.Offline()...)
	}
	if cfg.Data.Advisories != "" {
		out = append(out, provider.NewFile(cfg.Data.Advisories, sourceLocal, logger))
	}
	return out
}

// loadHealthData populates an empty store. A persistent store that
// already holds articles is reused as is.
func loadHealthData(ctx context.Context, bot *rhea.Bot, cfg *config.Config, logger *zap.Logger) (rhea.IngestReport, error) {
	stats, err := bot.Stats(ctx)
	if err != nil {
		return rhea.IngestReport{}, err
	}
	if stats.TotalArticles > 0 {
		logger.Info("health data already present", zap.Int("articles", stats.TotalArticles))
		return rhea.IngestReport{Total: stats.TotalArticles}, nil
	}
	return bot.LoadHealthData(ctx, providers(cfg, logger)...)
}
