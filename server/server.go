// Package server assembles the HTTP service: routing, middleware, and
// the background runners that keep topic embeddings current.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/server/middleware"
	apiv1 "github.com/topicinsights/topicinsights/server/router/api/v1"
	"github.com/topicinsights/topicinsights/server/runner/embedding"
	"github.com/topicinsights/topicinsights/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(requestLogger())
	echoServer.Use(middleware.NewRateLimiter(10, 20).Middleware())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	s.echoServer = echoServer
	s.apiService = apiv1.NewAPIV1Service(profile, store)
	s.apiService.RegisterRoutes(echoServer)

	return s, nil
}

// Start begins serving and launches background runners. It does not block.
func (s *Server) Start(ctx context.Context) error {
	s.startRunners(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
		}
	}()
	return nil
}

func (s *Server) startRunners(ctx context.Context) {
	if s.Profile.EmbedRunnerEnabled && s.apiService.Embedder != nil {
		runner := embedding.NewRunner(s.Store, s.apiService.Embedder)
		go runner.Run(ctx)
	}
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("topicinsights stopped")
}

// requestLogger logs every request with method, path, status, and latency.
func requestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				slog.Error("request", attrs...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}
