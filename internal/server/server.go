// Package server hosts the search API over echo with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/heritage-kr/noticehub/internal/apperr"
	mw "github.com/heritage-kr/noticehub/pkg/middleware"
	pkgserver "github.com/heritage-kr/noticehub/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

type Server struct {
	Echo *echo.Echo

	cfg *Config
}

func NewServer(e *echo.Echo, cfg *Config) *Server {
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	s := &Server{
		Echo: e,
		cfg:  cfg,
	}

	s.setupMiddlewares()

	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet},
	}))
}

// BindHealth exposes the liveness endpoint over the given checkers; the
// endpoint reports 503 as soon as one dependency is unhealthy.
func (s *Server) BindHealth(checkers ...pkgserver.HealthChecker) {
	s.Echo.GET("/healthz", func(c echo.Context) error {
		for _, hc := range checkers {
			if !hc.Healthy(c.Request().Context()) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Echo.Logger.Fatal("shutting down the server")
		}
	}()

	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.Echo.Logger.Fatal(err)
		return err
	}
	return nil
}
