package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported by the health service
const ServiceName = "paystack.webhook"

// Server exposes the standard gRPC health service for orchestrator probes
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: log,
		server: grpc.NewServer(logger.GrpcServerOptions(log)...),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.SetServing(true)
	return s
}

// SetServing flips the overall and per-service health status
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.GRPC.Host, s.config.Server.GRPC.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.logger.Info("Starting gRPC server", zap.String("address", addr))

	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
	return nil
}
