package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/app"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	grpcServer "github.com/SOMALeoAfrica/Webhook-Server/internal/infrastructure/grpc"
	httpServer "github.com/SOMALeoAfrica/Webhook-Server/internal/infrastructure/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	httpSrv := httpServer.NewServer(cfg, logger, application.Webhooks, application.Sweeper)

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Port > 0 {
		grpcSrv = grpcServer.NewServer(cfg, logger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				logger.Error("gRPC server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.SetServing(false)
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	if err := application.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close backends", zap.Error(err))
	}

	logger.Info("Servers shut down successfully")
}
