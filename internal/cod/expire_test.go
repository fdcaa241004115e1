package cod

import (
	"context"
	"fmt"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/internal/testutil"
	"depotChangeManagement/models"
)

func TestExpireStale_MovesOverdueRequests(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()
	before := promtest.ToFloat64(expiredTotal)

	h.advance(DefaultExpiryWindow - time.Second)
	n, err := h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, models.CodPending, h.request(req.ID).Status)

	h.advance(time.Second)
	n, err = h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, before+1, promtest.ToFloat64(expiredTotal))

	require.Equal(t, models.CodExpired, h.request(req.ID).Status)
	require.Equal(t, models.ContainerAvailable, h.container(h.w.Container.ID).Status)
	require.Equal(t, 1, h.count("audit_logs", "action = $1 AND actor_org_name = $2 AND actor_user_id IS NULL",
		string(models.AuditExpired), audit.ActorSystem))

	// Idempotent: nothing left to expire, and the container is free again.
	n, err = h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Zero(t, n)
	h.create()
}

func TestExpireStale_SkipsDecidedRequests(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()
	h.approve(req.ID)

	h.advance(48 * time.Hour)
	n, err := h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, models.CodApproved, h.request(req.ID).Status)
	require.Equal(t, models.ContainerAwaitingCodPayment, h.container(h.w.Container.ID).Status)
}

func TestExpireStale_LeavesUnexpectedContainerStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()
	testutil.SetContainerStatus(t, h.db, h.w.Container.ID, models.ContainerCodRejected)

	h.advance(DefaultExpiryWindow)
	n, err := h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, models.CodExpired, h.request(req.ID).Status)
	require.Equal(t, models.ContainerCodRejected, h.container(h.w.Container.ID).Status)
}

func TestExpireStale_ManyRequests(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{ExpiryWindow: time.Hour})
	for i := 0; i < 5; i++ {
		c := h.w.NewContainer(t, h.db, fmt.Sprintf("TGHU00000%02d", i), h.w.ShippingLine.ID)
		_, err := h.svc.Create(ctx, h.w.Dispatcher, CreateInput{ContainerID: c.ID, DestinationDepotID: h.w.D2.ID, Reason: "batch"})
		require.NoError(t, err)
	}

	h.advance(2 * time.Hour)
	n, err := h.svc.ExpireStale(ctx, h.now)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 5, h.count("cod_requests", "status = $1", string(models.CodExpired)))
	require.Zero(t, h.count("containers", "status = $1", string(models.ContainerAwaitingCodApproval)))
}

func TestRunExpirySweeper(t *testing.T) {
	h := newHarness(t, Options{})
	req := h.create()
	h.advance(DefaultExpiryWindow + time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.svc.RunExpirySweeper(ctx, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		r, err := h.requests.GetByID(context.Background(), req.ID)
		return err == nil && r != nil && r.Status == models.CodExpired
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
