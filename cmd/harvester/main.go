package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/heritage-kr/noticehub/internal/browser"
	"github.com/heritage-kr/noticehub/internal/cache"
	"github.com/heritage-kr/noticehub/internal/crawler"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/internal/harvest"
	"github.com/heritage-kr/noticehub/internal/polish"
	"github.com/heritage-kr/noticehub/internal/sites"
	"github.com/heritage-kr/noticehub/internal/storage/es"
	"github.com/heritage-kr/noticehub/internal/storage/pg"
)

func main() {
	var (
		site        = flag.String("site", "", "source tag of the board to harvest")
		untilID     = flag.Int("until", 0, "harvest down to this article id")
		fromID      = flag.Int("from", 0, "lower bound of the article id range")
		toID        = flag.Int("to", 0, "upper bound of the article id range")
		concurrency = flag.Int("concurrency", 4, "number of background tabs")
		ceiling     = flag.Int("ceiling", 50, "maximum listing pages to walk")
	)
	flag.Parse()

	if *site == "" {
		slog.Error("-site is required")
		os.Exit(1)
	}
	if *untilID == 0 && *fromID == 0 {
		slog.Error("one of -until or -from/-to is required")
		os.Exit(1)
	}

	cfg, err := NewAppConfig().Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry, err := loadRegistry(cfg.SitesPath)
	if err != nil {
		slog.Error("failed to load site registry", "error", err, "path", cfg.SitesPath)
		os.Exit(1)
	}
	siteCfg, ok := registry.Get(domain.SourceTag(*site))
	if !ok {
		slog.Error("unknown source tag", "site", *site)
		os.Exit(1)
	}

	pipeline, cleanup, err := newPipeline(ctx, cfg, siteCfg, *concurrency, *ceiling)
	if err != nil {
		slog.Error("failed to assemble pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var stats harvest.Stats
	if *untilID > 0 {
		stats, err = pipeline.RunUntil(ctx, *untilID)
	} else {
		stats, err = pipeline.RunRange(ctx, *fromID, *toID)
	}
	if err != nil {
		slog.Error("harvest failed", "error", err)
		os.Exit(1)
	}

	slog.Info("harvest finished",
		"site", *site,
		"discovered", stats.Discovered,
		"from_cache", stats.FromCache,
		"fetched", stats.Fetched,
		"skipped", stats.Skipped,
		"stored", stats.Stored,
		"errors", stats.Errors)
}

func loadRegistry(path string) (*sites.Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return sites.Load(file)
}

func newPipeline(ctx context.Context, cfg *HarvesterConfig, siteCfg *sites.Config, concurrency, ceiling int) (*harvest.Pipeline, func(), error) {
	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Headless
	session, err := browser.NewChromeSession(ctx, browserOpts)
	if err != nil {
		return nil, nil, err
	}

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.PgConnStr})
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}

	esClient, err := es.NewClient(ctx, es.ClientConfig{
		Addresses:   cfg.EsAddresses,
		IndexPrefix: cfg.EsIndexPrefix,
		Username:    cfg.EsUsername,
		Password:    cfg.EsPassword,
	})
	if err != nil {
		pool.Close()
		_ = session.Close()
		return nil, nil, err
	}
	if err := esClient.EnsureIndex(ctx, domain.DefaultLanguage); err != nil {
		pool.Close()
		_ = session.Close()
		return nil, nil, err
	}

	var polisher harvest.Polisher = polish.Noop{}
	if cfg.PolisherURL != "" {
		polisher, err = polish.NewHTTPPolisher(cfg.PolisherURL)
		if err != nil {
			pool.Close()
			_ = session.Close()
			return nil, nil, err
		}
	}

	pipeline := harvest.NewPipeline(
		crawler.New(session, siteCfg),
		cache.NewStore(cfg.CacheDir),
		polisher,
		pg.NewStore(pool),
		esClient,
		harvest.PipelineConfig{
			Source:      siteCfg.Source,
			Concurrency: concurrency,
			Ceiling:     ceiling,
			Filter:      harvest.NewContentFilter(cfg.SkipWords),
		},
	)

	cleanup := func() {
		if err := session.Close(); err != nil {
			slog.Warn("closing browser session failed", "error", err)
		}
		pool.Close()
	}
	return pipeline, cleanup, nil
}
