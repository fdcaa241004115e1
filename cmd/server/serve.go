package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"depotChangeManagement/internal/cod"
	grpcserver "depotChangeManagement/internal/grpc"
	"depotChangeManagement/internal/ops"
	"depotChangeManagement/repository"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API, the ops HTTP endpoints and the expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(!dev)
			if err != nil {
				return err
			}
			defer a.close()

			svc, users, err := a.service()
			if err != nil {
				return err
			}

			stop, err := a.startServers(svc, users)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go svc.RunExpirySweeper(ctx, a.cfg.COD.SweepInterval)

			<-ctx.Done()
			a.log.Info("shutting down")
			stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "use the development JWT secret when JWT_SECRET is unset")
	return cmd
}

// startServers brings up the gRPC API and the ops endpoints. If either fails to
// start, nothing is left listening. The returned func stops both.
func (a *app) startServers(svc *cod.Service, users *repository.UserRepository) (func(), error) {
	stopGRPC, err := grpcserver.StartGRPC(a.cfg, users, svc, a.log)
	if err != nil {
		return nil, err
	}
	a.log.WithField("address", a.cfg.GRPC.Address).Info("gRPC server listening")

	shutdown := func(name string, fn func(context.Context) error) {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.log.WithError(err).Warn(name + " shutdown")
		}
	}

	stopOps, err := ops.StartHTTP(a.cfg.Ops.Address, a.db, a.log)
	if err != nil {
		shutdown("grpc", stopGRPC)
		return nil, err
	}
	a.log.WithField("address", a.cfg.Ops.Address).Info("ops server listening")

	return func() {
		shutdown("grpc", stopGRPC)
		shutdown("ops", stopOps)
	}, nil
}
