package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported for the assistant.
const ServiceName = "fridgechef.Chef"

// GRPCServer exposes the standard grpc.health.v1 service, its serving
// status following the Monitor.
type GRPCServer struct {
	monitor *Monitor
	health  *grpchealth.Server
	server  *grpc.Server
	port    int
}

// NewGRPCServer creates a gRPC server with the health service registered.
func NewGRPCServer(monitor *Monitor, port int) *GRPCServer {
	s := &GRPCServer{
		monitor: monitor,
		health:  grpchealth.NewServer(),
		server:  grpc.NewServer(),
		port:    port,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	return s
}

// Start listens on the configured port and serves until Stop.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.Sync(context.Background())
	return s.server.Serve(lis)
}

// Sync copies the monitor's current status into the health service.
func (s *GRPCServer) Sync(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.monitor.CheckHealth(ctx).SystemStatus == StatusCritical {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// RunSync refreshes the serving status every interval until ctx is done.
func (s *GRPCServer) RunSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
			slog.Debug("gRPC health synced")
		}
	}
}

// Stop marks every service NOT_SERVING and drains connections.
func (s *GRPCServer) Stop(ctx context.Context) {
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
}
