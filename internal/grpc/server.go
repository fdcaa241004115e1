package grpcserver

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/config"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewServer builds the gRPC server with the auth interceptor, CodService and the health service.
func NewServer(secret string, users auth.UserDirectory, svc Lifecycle, log logrus.FieldLogger) *grpc.Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(secret, healthCheckMethod)))

	RegisterCodServiceServer(srv, &CodServer{Users: users, Cod: svc, Log: log.WithField("component", "grpc")})

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, users auth.UserDirectory, svc Lifecycle, log logrus.FieldLogger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; TLS is terminated in front of the service.
	srv := NewServer(cfg.Auth.JWTSecret, users, svc, log)

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
