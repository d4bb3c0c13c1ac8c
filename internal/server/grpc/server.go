// Package grpc runs the ops listener: the standard grpc.health.v1 service
// and server reflection. Orchestrators probe it; the product API is HTTP.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/donna/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall "".
const ServiceName = "donna.Assistant"

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type HealthServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	probe    Probe
	interval time.Duration
}

// NewHealthServer creates the ops server. When probe is non-nil it is run
// every interval and flips the status between SERVING and NOT_SERVING.
func NewHealthServer(a string, l logging.Logger, probe Probe, interval time.Duration) *HealthServer {
	return &HealthServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
		probe:    probe,
		interval: interval,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.setStatus(healthpb.HealthCheckResponse_SERVING)

	if s.probe != nil && s.interval > 0 {
		go s.watch(ctx)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, s.interval)
			err := s.probe(pctx)
			cancel()

			if ctx.Err() != nil {
				return
			}

			switch {
			case err != nil && healthy:
				s.logger.Warn(ctx, "dependency probe failed", "error", err)
				s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
				healthy = false
			case err == nil && !healthy:
				s.logger.Info(ctx, "dependency probe recovered")
				s.setStatus(healthpb.HealthCheckResponse_SERVING)
				healthy = true
			}
		}
	}
}
