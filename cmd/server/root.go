package main

import (
	"database/sql"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/billing"
	"depotChangeManagement/internal/cod"
	"depotChangeManagement/internal/config"
	"depotChangeManagement/internal/db"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/repository"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "depot-change",
		Short:        "Change-of-depot (COD) request service",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newExpireCmd(), newTokenCmd(), newBillServiceFeeCmd())
	return cmd
}

// app is what every command needs: configuration, logger and an open database.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *sql.DB
}

func openApp(strict bool) (*app, error) {
	load := config.LoadWithDefaults
	if strict {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	log := cfg.Logger()
	log.WithField("config", cfg.String()).Debug("configuration loaded")

	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: d}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Warn("close db")
	}
}

// service wires the lifecycle manager and its collaborators.
func (a *app) service() (*cod.Service, *repository.UserRepository, error) {
	authz, err := auth.NewAuthorizer(a.log)
	if err != nil {
		return nil, nil, err
	}
	depots := repository.NewDepotRepository(a.db)
	svc := cod.NewService(cod.Deps{
		Tx:         repository.NewTxManager(a.db),
		Containers: repository.NewContainerRepository(a.db),
		Requests:   repository.NewCodRequestRepository(a.db),
		Depots:     depots,
		Fees:       fee.NewCalculator(depots, a.log),
		Audit:      audit.NewLogger(repository.NewAuditRepository(a.db), a.log),
		Billing:    billing.NewEmitter(repository.NewBillingRepository(a.db), a.cfg.Billing.ServiceFee, a.log),
		Authz:      authz,
		Log:        a.log,
	}, cod.Options{
		ExpiryWindow: a.cfg.COD.ExpiryWindow,
		StrictFee:    a.cfg.COD.StrictFee,
	})
	return svc, repository.NewUserRepository(a.db), nil
}
