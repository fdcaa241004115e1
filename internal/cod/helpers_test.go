package cod

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"depotChangeManagement/internal/audit"
	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/billing"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/internal/testutil"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

type harness struct {
	t          *testing.T
	db         *sql.DB
	w          *testutil.World
	svc        *Service
	requests   *repository.CodRequestRepository
	containers *repository.ContainerRepository
	depots     *repository.DepotRepository
	bills      *repository.BillingRepository
	audits     *repository.AuditRepository
	now        time.Time
}

func newHarness(t *testing.T, opts Options) *harness {
	return newHarnessWith(t, opts, nil)
}

// newHarnessWith lets a test wrap the request repository.
func newHarnessWith(t *testing.T, opts Options, wrap func(*repository.CodRequestRepository) repository.CodRequestRepositoryI) *harness {
	t.Helper()
	d := testutil.OpenInMemoryDB(t)
	h := &harness{
		t:          t,
		db:         d,
		w:          testutil.Seed(t, d),
		requests:   repository.NewCodRequestRepository(d),
		containers: repository.NewContainerRepository(d),
		depots:     repository.NewDepotRepository(d),
		bills:      repository.NewBillingRepository(d),
		audits:     repository.NewAuditRepository(d),
		now:        time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	authz, err := auth.NewAuthorizer(nil)
	require.NoError(t, err)

	var requests repository.CodRequestRepositoryI = h.requests
	if wrap != nil {
		requests = wrap(h.requests)
	}
	h.svc = NewService(Deps{
		Tx:         repository.NewTxManager(d),
		Containers: h.containers,
		Requests:   requests,
		Depots:     h.depots,
		Fees:       fee.NewCalculator(h.depots, nil),
		Audit:      audit.NewLogger(h.audits, nil),
		Billing:    billing.NewEmitter(h.bills, 0, nil),
		Authz:      authz,
	}, opts)
	h.svc.SetClock(func() time.Time { return h.now })
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func (h *harness) container(id string) *models.Container {
	h.t.Helper()
	c, err := h.containers.GetByID(context.Background(), id)
	require.NoError(h.t, err)
	require.NotNil(h.t, c)
	return c
}

func (h *harness) request(id string) *models.CodRequest {
	h.t.Helper()
	r, err := h.requests.GetByID(context.Background(), id)
	require.NoError(h.t, err)
	return r
}

func (h *harness) count(table, where string, args ...any) int {
	h.t.Helper()
	return testutil.CountRows(h.t, h.db, table, where, args...)
}

func (h *harness) auditCount(action models.AuditAction) int {
	return h.count("audit_logs", "action = $1", string(action))
}

func fee64(v int64) *int64 { return &v }

// create opens a request for the seeded container towards D2.
func (h *harness) create() *models.CodRequest {
	h.t.Helper()
	req, err := h.svc.Create(context.Background(), h.w.Dispatcher, CreateInput{
		ContainerID:        h.w.Container.ID,
		DestinationDepotID: h.w.D2.ID,
		Reason:             "need for next load",
		ClientFee:          fee64(testutil.FeeD1D2),
	})
	require.NoError(h.t, err)
	return req
}

func (h *harness) approve(requestID string) *models.CodRequest {
	h.t.Helper()
	req, err := h.svc.Decide(context.Background(), h.w.Carrier, DecideInput{RequestID: requestID, Decision: models.DecisionApproved})
	require.NoError(h.t, err)
	return req
}
