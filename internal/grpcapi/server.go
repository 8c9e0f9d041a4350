//go:build grpcserver

// Package grpcapi is the thin gRPC adapter over internal/dispatch: one
// RPC method per external operation in spec §6, split across three
// services by caller kind, the same three-way split the teacher uses
// for its user/drone/admin surfaces. It depends on generated stubs under
// hospitaldrones/api/*/v1 that a `make proto` step produces from the
// .proto sources; until those are generated this package does not
// compile, which is why it — and cmd/server/main.go — sit behind the
// grpcserver build tag exactly as the teacher gates internal/grpc.
package grpcapi

import (
	"context"
	"net"

	adminv1 "hospitaldrones/api/admin/v1"
	dispatchv1 "hospitaldrones/api/dispatch/v1"
	dronev1 "hospitaldrones/api/drone/v1"
	"hospitaldrones/internal/auth"
	"hospitaldrones/internal/config"
	"hospitaldrones/internal/dispatch"

	"google.golang.org/grpc"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// StartGRPC starts the gRPC server on cfg.GRPC.Address and returns a
// shutdown function. It registers the DispatchService (requester-facing:
// create/cancel/status), DroneService (drone-facing: complete_request,
// get_drone_status), and AdminService (fleet-operator-facing: add_drone,
// get_statistics, get_energy_report), all authenticated by the same JWT
// interceptor the teacher uses.
func StartGRPC(cfg *config.Config, d *dispatch.Dispatcher) (func(context.Context) error, error) {
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

	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(cfg.Auth.JWTSecret, healthCheckMethod)))

	dispatchv1.RegisterDispatchServiceServer(srv, &DispatchServer{d: d})
	dronev1.RegisterDroneServiceServer(srv, &DroneServer{d: d})
	adminv1.RegisterAdminServiceServer(srv, &AdminServer{d: d})

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
