package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServiceName is the service name reported alongside the overall ("")
// status.
const GRPCServiceName = "crudstore.API"

// HealthServer publishes readiness over grpc.health.v1.Health.
type HealthServer struct {
	srv       *health.Server
	readiness readinessChecker
	interval  time.Duration
	log       *zap.Logger
}

// NewHealthServer creates a health server that starts NOT_SERVING until the
// first probe passes.
func NewHealthServer(r readinessChecker, interval time.Duration, log *zap.Logger) *HealthServer {
	if r == nil {
		r = ReadyProbe{}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &HealthServer{srv: health.NewServer(), readiness: r, interval: interval, log: log}
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Register attaches the health service to a gRPC server.
func (s *HealthServer) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, s.srv)
}

// Probe runs the readiness check once and publishes the result.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.readiness.Check(ctx); err != nil {
		s.log.Warn("readiness probe failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.set(status)
	return status
}

// Run probes until ctx is done.
func (s *HealthServer) Run(ctx context.Context) {
	s.Probe(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING from now on, ignoring later probes.
func (s *HealthServer) Shutdown() {
	s.srv.Shutdown()
}

func (s *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	s.srv.SetServingStatus("", status)
	s.srv.SetServingStatus(GRPCServiceName, status)
}
