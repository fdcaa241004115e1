package audit

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"depotChangeManagement/models"
)

type memStore struct {
	rows []models.AuditLogEntry
	err  error
}

func (m *memStore) Append(_ context.Context, e *models.AuditLogEntry) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *e)
	return nil
}

func (m *memStore) ListByRequest(_ context.Context, id string) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, r := range m.rows {
		if r.RequestID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListByContainer(_ context.Context, id string) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, r := range m.rows {
		if r.ContainerID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestAppend_NormalizesDetails(t *testing.T) {
	store := &memStore{}
	l := NewLogger(store, nil)
	fixed := time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	exp := fixed.Add(24 * time.Hour)
	var noTime *time.Time
	l.Append(context.Background(), Entry{
		RequestID:    "r1",
		ContainerID:  "c1",
		ActorUserID:  "u1",
		ActorOrgName: "Vận tải Sài Gòn",
		Action:       models.AuditInfoSubmitted,
		Details: map[string]any{
			"expires_at": exp,
			"previous":   noTime,
			"status":     models.CodPending,
			"fee":        int64(350000),
		},
	})

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	require.Equal(t, fixed, row.CreatedAt)
	require.Equal(t, "2026-04-03T07:00:00Z", row.Details["expires_at"])
	require.Nil(t, row.Details["previous"])
	require.Equal(t, "PENDING", row.Details["status"])
	require.Equal(t, int64(350000), row.Details["fee"])

	trail, err := l.Trail(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	byContainer, err := l.ContainerTrail(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, byContainer, 1)
}

func TestAppend_FailureIsSwallowedAndCounted(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	l := NewLogger(store, nil)

	before := testutil.ToFloat64(writeFailures.WithLabelValues(string(models.AuditExpired)))
	require.NotPanics(t, func() {
		l.Append(context.Background(), Entry{ContainerID: "c1", ActorOrgName: ActorSystem, Action: models.AuditExpired})
	})
	after := testutil.ToFloat64(writeFailures.WithLabelValues(string(models.AuditExpired)))
	require.Equal(t, before+1, after)
	require.Empty(t, store.rows)
}
