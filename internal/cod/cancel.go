package cod

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// Cancel deletes an active request and returns the container to AVAILABLE.
// The CANCELLED entry is logged against the container; the request id is kept in details.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, requestID string) (err error) {
	defer func(start time.Time) { observe("cancel", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActCancel) {
		return ErrUnauthorized
	}
	if requestID == "" {
		return ErrInvalidInput
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RequestingOrgID != actor.OrgID {
		return ErrNotRequester
	}
	if !req.Status.IsActive() {
		return ErrInvalidRequestStatus
	}

	now := s.clock()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.DeleteIfStatus(ctx, req.ID, models.ActiveCodStatuses...)
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidRequestStatus
		}
		ok, err = s.containers.Transition(ctx, req.ContainerID, repository.ContainerTransition{
			From: []models.ContainerStatus{models.ContainerAwaitingCodApproval},
			To:   containerStatusWithoutRequest,
			At:   now,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidContainerStatus
		}
		return nil
	})
	if err != nil {
		return persistence(err)
	}

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "container_id": req.ContainerID}).Info("cod request cancelled")
	s.record(ctx, actor, models.AuditCancelled, "", req.ContainerID, map[string]any{
		"request_id":      req.ID,
		"previous_status": req.Status,
		"reason":          req.Reason,
	})
	return nil
}
