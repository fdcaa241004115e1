package grpcserver

import (
	"context"
	"testing"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/billing"
	"depotChangeManagement/internal/cod"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/internal/testutil"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// newTestDeps opens a seeded in-memory DB and wires the real lifecycle service.
func newTestDeps(t *testing.T) (*repository.UserRepository, *cod.Service, *testutil.World) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t)
	w := testutil.Seed(t, d)
	users := repository.NewUserRepository(d)
	depots := repository.NewDepotRepository(d)
	authz, err := auth.NewAuthorizer(nil)
	if err != nil {
		t.Fatalf("authorizer: %v", err)
	}
	svc := cod.NewService(cod.Deps{
		Tx:         repository.NewTxManager(d),
		Containers: repository.NewContainerRepository(d),
		Requests:   repository.NewCodRequestRepository(d),
		Depots:     depots,
		Fees:       fee.NewCalculator(depots, nil),
		Audit:      audit.NewLogger(repository.NewAuditRepository(d), nil),
		Billing:    billing.NewEmitter(repository.NewBillingRepository(d), 0, nil),
		Authz:      authz,
	}, cod.Options{})
	return users, svc, w
}

// newPrincipalCtx returns a context with the given principal injected.
func newPrincipalCtx(a models.Actor) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Name: a.Username, Role: string(a.Role)})
}
