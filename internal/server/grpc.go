package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger reports backing store health.
type Pinger func(ctx context.Context) error

// HealthServer serves grpc.health.v1 and follows the store's health.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	ping   Pinger
	logger *slog.Logger
}

func NewHealthServer(ping Pinger, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	// Reflection for grpcurl
	reflection.Register(gs)
	return &HealthServer{grpc: gs, health: hs, ping: ping, logger: logger}
}

// Check pings the store once and updates the serving status.
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("grpc.health.not_serving", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	return status
}

// Serve blocks until ctx is done, re-checking health every interval.
func (h *HealthServer) Serve(ctx context.Context, lis net.Listener, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	h.Check(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- h.grpc.Serve(lis) }()
	h.logger.Info("grpc.serving", "addr", lis.Addr().String())

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case err := <-errCh:
			return err
		case <-t.C:
			h.Check(ctx)
		case <-ctx.Done():
			h.health.Shutdown()
			h.grpc.GracefulStop()
			return nil
		}
	}
}
