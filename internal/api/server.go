package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vegasq/insight/internal/api/middleware"
	"github.com/vegasq/insight/internal/config"
	"github.com/vegasq/insight/internal/logger"
	"github.com/vegasq/insight/internal/service"
)

type Server struct {
	config     *config.Config
	logger     logger.Logger
	service    *service.Service
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(cfg *config.Config, log logger.Logger, svc *service.Service) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:  cfg,
		logger:  log,
		service: svc,
		router:  gin.New(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORSMiddleware(s.config.Server.AllowedOrigins))
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.MetricsMiddleware())
}

func (s *Server) setupRoutes() {
	h := &handlers{service: s.service, maxBody: s.config.Server.MaxBodyBytes}

	s.router.GET("/healthz", h.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.PUT("/dataset/:id/:kind", h.addDataset)
	s.router.DELETE("/dataset/:id", h.removeDataset)
	s.router.GET("/datasets", h.listDatasets)
	s.router.POST("/query", h.performQuery)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("insight REST API server starting", "addr", s.config.Server.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down insight gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
