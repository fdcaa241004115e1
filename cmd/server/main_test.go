package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/cod"
	"depotChangeManagement/internal/db"
	"depotChangeManagement/internal/testutil"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return strings.TrimSpace(out.String())
}

func runErr(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cod.db")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")

	d, err := db.Open(db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	users := repository.NewUserRepository(d)
	ctx := context.Background()
	org := models.Organization{Name: "Vận tải Sài Gòn", Kind: models.OrganizationTrucking}
	if err := users.CreateOrganization(ctx, &org); err != nil {
		t.Fatalf("org: %v", err)
	}
	if err := users.Create(ctx, &models.User{Username: "alice", Role: models.RoleDispatcher, OrganizationID: org.ID}); err != nil {
		t.Fatalf("user: %v", err)
	}
	_ = d.Close()

	tok := run(t, "token", "--user", "alice", "--ttl", "0")
	p, err := auth.ParseFromMD(testutil.CtxWithBearer(ctx, tok), "cli-secret")
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.Name != "alice" || p.Role != string(models.RoleDispatcher) {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if got := run(t, "expire"); got != "expired 0 request(s)" {
		t.Fatalf("expire: %q", got)
	}
	if got := run(t, "migrate", "down"); got != "rolled back migration 0001" {
		t.Fatalf("migrate down: %q", got)
	}
	run(t, "migrate", "up")
}

func TestBillServiceFee(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "cod.db"))
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BILLING_SERVICE_FEE", "25000")

	a, err := openApp(false)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	defer a.close()
	w := testutil.Seed(t, a.db)
	svc, _, err := a.service()
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	if err := runErr(t, "bill-service-fee", "--container", w.Container.ContainerNumber); err == nil {
		t.Fatalf("expected failure without an approved request")
	}

	ctx := context.Background()
	req, err := svc.Create(ctx, w.Dispatcher, cod.CreateInput{ContainerID: w.Container.ID, DestinationDepotID: w.D2.ID, Reason: "cli"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Decide(ctx, w.Carrier, cod.DecideInput{RequestID: req.ID, Decision: models.DecisionApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if got := run(t, "bill-service-fee", "--container", w.Container.ContainerNumber); got != "billed service fee for request "+req.ID {
		t.Fatalf("bill-service-fee: %q", got)
	}
	n := testutil.CountRows(t, a.db, "billing_transactions", "kind = $1 AND organization_id = $2 AND amount = $3",
		string(models.BillingServiceFee), w.Trucking.ID, 25000)
	if n != 1 {
		t.Fatalf("service fee rows = %d, want 1", n)
	}

	if err := runErr(t, "bill-service-fee", "--container", w.Container.ContainerNumber); err == nil {
		t.Fatalf("expected a second billing to be refused")
	}
	if err := runErr(t, "bill-service-fee", "--container", "NOPE0000000"); err == nil {
		t.Fatalf("expected unknown container to fail")
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestStartServers(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "cod.db"))
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")

	a, err := openApp(false)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	defer a.close()
	svc, users, err := a.service()
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	t.Run("ops port taken releases grpc", func(t *testing.T) {
		busy, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		defer busy.Close()
		a.cfg.GRPC.Address = freeAddr(t)
		a.cfg.Ops.Address = busy.Addr().String()

		if _, err := a.startServers(svc, users); err == nil {
			t.Fatalf("expected ops listen failure")
		}
		l, err := net.Listen("tcp", a.cfg.GRPC.Address)
		if err != nil {
			t.Fatalf("grpc address still in use: %v", err)
		}
		_ = l.Close()
	})

	t.Run("stop releases both", func(t *testing.T) {
		a.cfg.GRPC.Address = freeAddr(t)
		a.cfg.Ops.Address = freeAddr(t)
		stop, err := a.startServers(svc, users)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		stop()
		for _, addr := range []string{a.cfg.GRPC.Address, a.cfg.Ops.Address} {
			l, err := net.Listen("tcp", addr)
			if err != nil {
				t.Fatalf("%s still in use: %v", addr, err)
			}
			_ = l.Close()
		}
	})
}
