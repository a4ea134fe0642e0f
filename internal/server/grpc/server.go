// Package grpcserver exposes the standard gRPC health service so
// orchestrators can probe the joke board and its storage.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported alongside the overall "".
const ServiceName = "jokes.v1.Board"

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// Health answers grpc.health.v1.Health/Check by running the configured checks.
type Health struct {
	healthpb.UnimplementedHealthServer
	log     *zap.Logger
	checks  []Checker
	timeout time.Duration
}

// NewHealth constructs a health service. With no checks it always reports SERVING.
func NewHealth(log *zap.Logger, checks ...Checker) *Health {
	return &Health{log: log, checks: checks, timeout: 2 * time.Second}
}

// Check reports SERVING when every check passes.
func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	for _, c := range h.checks {
		if err := c(ctx); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// Server is a gRPC server carrying the health service.
type Server struct {
	srv *grpc.Server
	log *zap.Logger
}

// New builds a gRPC server with recovery and logging interceptors. Extra
// options such as grpc.Creds are appended. withReflection registers server
// reflection for development tooling.
func New(log *zap.Logger, h *Health, withReflection bool, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
	)}, opts...)
	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, h)
	if withReflection {
		reflection.Register(srv)
	}
	return &Server{srv: srv, log: log}
}

// Serve blocks serving on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// Stop drains in-flight calls, forcing a stop once ctx is done.
func (s *Server) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.srv.Stop()
	}
}
