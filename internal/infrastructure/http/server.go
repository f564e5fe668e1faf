package http

import (
	"context"
	"fmt"

	handlers "github.com/SOMALeoAfrica/Webhook-Server/internal/adapter/handler/http"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/middleware/auth"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

func NewServer(cfg *config.Config, log *zap.Logger, processor handlers.WebhookProcessor, sweeper handlers.Sweeper) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
	}
	s.setupRoutes(processor, sweeper)
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes(processor handlers.WebhookProcessor, sweeper handlers.Sweeper) {
	healthHandler := handlers.NewHealthHandler(s.config.Service.Name, s.config.Service.Version)
	webhookHandler := handlers.NewPaystackWebhookHandler(processor, s.logger)
	cronHandler := handlers.NewCronHandler(sweeper, s.config.Mongo.Collections.StudentSubscriptions, s.logger)

	s.echo.GET("/", healthHandler.Liveness)
	s.echo.GET("/health", healthHandler.Health)

	bodyLimit := s.config.Paystack.MaxBodyBytes
	if bodyLimit == "" {
		bodyLimit = "1M"
	}
	s.echo.POST("/paystack/webhook", webhookHandler.HandleWebhook, middleware.BodyLimit(bodyLimit))

	if s.config.Cron.Secret == "" {
		s.logger.Warn("cron.secret is empty, /cron routes are unauthenticated")
	}
	cron := s.echo.Group("/cron", auth.CronAuthMiddleware(auth.CronAuthConfig{
		Secret: s.config.Cron.Secret,
		Logger: s.logger,
	}))
	cron.GET("/cleanup-expired-student-plans", cronHandler.CleanupExpiredStudentPlans)
	cron.GET("/revoke-expired-claims", cronHandler.RevokeExpiredClaims)
}
