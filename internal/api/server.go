package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/callscope/internal/api/middleware"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability"
	"github.com/tphakala/callscope/internal/session"
)

// Server hosts the session API on an echo instance.
type Server struct {
	echo     *echo.Echo
	config   *Config
	manager  *session.Manager
	metrics  *observability.Metrics
	log      logger.Logger
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request and live connection metrics and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer builds the echo instance and registers every route.
func NewServer(cfg *Config, manager *session.Manager, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}
	if manager == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	s := &Server{
		echo:    echo.New(),
		config:  cfg,
		manager: manager,
		log:     GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = cfg.Debug
	s.echo.HTTPErrorHandler = s.httpErrorHandler

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	sec := middleware.DefaultSecurityConfig()
	if len(s.config.AllowedOrigins) > 0 {
		sec.AllowedOrigins = s.config.AllowedOrigins
	}

	s.echo.Use(echomw.Recover())
	s.echo.Use(middleware.NewRequestLoggerWithSkipper(s.log, func(c echo.Context) bool {
		return c.Path() == "/health" || c.Path() == "/metrics"
	}))
	if s.metrics != nil {
		s.echo.Use(middleware.NewRequestMetrics(s.metrics.HTTP))
	}
	s.echo.Use(middleware.NewCORS(sec))
	s.echo.Use(middleware.NewSecureHeaders(sec))
	s.echo.Use(middleware.NewBodyLimit(s.config.BodyLimit))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	v1 := s.echo.Group("/api/v1")
	sessions := v1.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.DELETE("/:id", s.handleDeleteSession)
	sessions.POST("/:id/pointer", s.handlePointer)
	sessions.PUT("/:id/view", s.handleUpdateView)
	sessions.PUT("/:id/frequency-range", s.handleFrequencyRange)
	sessions.GET("/:id/selections", s.handleListSelections)
	sessions.DELETE("/:id/selections", s.handleClearSelections)
	sessions.POST("/:id/hover", s.handleHover)
	sessions.PUT("/:id/persistent-lines", s.handlePersistentLines)
	sessions.GET("/:id/notifications", s.handleNotifications)
	sessions.GET("/:id/ws", s.handleWebSocket)
}

// checkOrigin accepts same-host requests and any origin in AllowedOrigins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.echo,
		ReadHeaderTimeout: s.config.ReadTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	s.echo.Server = srv

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down HTTP server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Count(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
