package cod

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"depotChangeManagement/internal/apperr"
	"depotChangeManagement/models"
)

func TestCancel_FreesContainerForANewRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()

	require.NoError(t, h.svc.Cancel(ctx, h.w.Dispatcher, req.ID))
	require.Nil(t, h.request(req.ID))
	require.Equal(t, models.ContainerAvailable, h.container(h.w.Container.ID).Status)

	// The CANCELLED entry survives the deleted request and is found through the container.
	require.Equal(t, 1, h.count("audit_logs", "action = $1 AND cod_request_id IS NULL AND container_id = $2",
		string(models.AuditCancelled), h.w.Container.ID))
	trail, err := h.svc.AuditTrail(ctx, h.w.Dispatcher, AuditQuery{ContainerID: h.w.Container.ID})
	require.NoError(t, err)
	var cancelled *models.AuditLogEntry
	for i := range trail {
		if trail[i].Action == models.AuditCancelled {
			cancelled = &trail[i]
		}
	}
	require.NotNil(t, cancelled)
	require.Empty(t, cancelled.RequestID)
	require.Equal(t, req.ID, cancelled.Details["request_id"])
	require.Equal(t, string(models.CodPending), cancelled.Details["previous_status"])

	again := h.create()
	require.NotEqual(t, req.ID, again.ID)
}

func TestCancel_AwaitingInfoRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()
	_, err := h.svc.RequestMoreInfo(ctx, h.w.Carrier, RequestInfoInput{RequestID: req.ID, CarrierComment: "?"})
	require.NoError(t, err)

	require.NoError(t, h.svc.Cancel(ctx, h.w.Dispatcher, req.ID))
	require.Equal(t, models.ContainerAvailable, h.container(h.w.Container.ID).Status)
}

func TestCancel_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	req := h.create()

	err := h.svc.Cancel(ctx, h.w.OtherDispatcher, req.ID)
	require.ErrorIs(t, err, ErrNotRequester)

	err = h.svc.Cancel(ctx, h.w.Carrier, req.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	err = h.svc.Cancel(ctx, h.w.Dispatcher, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	err = h.svc.Cancel(ctx, h.w.Dispatcher, "missing")
	require.ErrorIs(t, err, ErrRequestNotFound)

	h.approve(req.ID)
	err = h.svc.Cancel(ctx, h.w.Dispatcher, req.ID)
	require.ErrorIs(t, err, ErrInvalidRequestStatus)
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	require.Equal(t, models.CodApproved, h.request(req.ID).Status)
	require.Equal(t, models.ContainerAwaitingCodPayment, h.container(h.w.Container.ID).Status)
	require.Zero(t, h.auditCount(models.AuditCancelled))
}
