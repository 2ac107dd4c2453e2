package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/heritage-kr/noticehub/internal/router"
	"github.com/heritage-kr/noticehub/internal/server"
	"github.com/heritage-kr/noticehub/internal/storage/es"
	"github.com/heritage-kr/noticehub/internal/storage/pg"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	cfg, err := NewAppConfig().Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.PgConnStr})
	if err != nil {
		slog.Error("Failed to connect to the document store", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	esClient, err := es.NewClient(ctx, es.ClientConfig{
		Addresses:   cfg.EsAddresses,
		IndexPrefix: cfg.EsIndexPrefix,
		Username:    cfg.EsUsername,
		Password:    cfg.EsPassword,
	})
	if err != nil {
		slog.Error("Failed to connect to the search index", "error", err)
		os.Exit(1)
	}

	s := server.NewServer(echo.New(), sCfg)
	s.BindHealth(pg.NewHealthChecker(pool))

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "noticehub API is running")
	})

	router.NewSearchRouter(s.Echo, esClient).Bind()
	router.NewArticleRouter(s.Echo, pg.NewStore(pool)).Bind()

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}
