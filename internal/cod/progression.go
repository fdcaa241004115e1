package cod

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// step is one container-only transition after approval.
type step struct {
	op     string
	act    string
	from   models.ContainerStatus
	to     models.ContainerStatus
	action models.AuditAction
	// ownerOnly restricts the step to the organization that owns the container.
	ownerOnly bool
	stamp     func(at *time.Time, c *repository.ContainerTransition, r *repository.CodRequestTransition)
}

var (
	stepConfirmPayment = step{
		op:     "confirm_payment",
		act:    auth.ActConfirmPayment,
		from:   models.ContainerAwaitingCodPayment,
		to:     models.ContainerOnGoingCod,
		action: models.AuditPaymentConfirmed,
		stamp: func(at *time.Time, c *repository.ContainerTransition, r *repository.CodRequestTransition) {
			c.PaymentConfirmedAt = at
			r.PaymentConfirmedAt = at
		},
	}
	stepStartProcessing = step{
		op:     "start_depot_processing",
		act:    auth.ActStartProcessing,
		from:   models.ContainerOnGoingCod,
		to:     models.ContainerDepotProcessing,
		action: models.AuditDepotProcessingStarted,
		stamp: func(at *time.Time, c *repository.ContainerTransition, r *repository.CodRequestTransition) {
			c.DepotProcessingStartedAt = at
			r.DepotProcessingStartedAt = at
		},
	}
	stepConfirmDelivery = step{
		op:        "confirm_delivery",
		act:       auth.ActConfirmDelivery,
		from:      models.ContainerOnGoingCod,
		to:        models.ContainerDepotProcessing,
		action:    models.AuditDeliveryConfirmed,
		ownerOnly: true,
		stamp: func(at *time.Time, c *repository.ContainerTransition, r *repository.CodRequestTransition) {
			c.DeliveryConfirmedAt = at
			c.DepotProcessingStartedAt = at
			r.DepotProcessingStartedAt = at
		},
	}
	stepCompleteProcessing = step{
		op:        "complete_depot_processing",
		act:       auth.ActCompleteProcessing,
		from:      models.ContainerDepotProcessing,
		to:        models.ContainerCompleted,
		action:    models.AuditDepotProcessingCompleted,
		ownerOnly: true,
		stamp: func(at *time.Time, c *repository.ContainerTransition, r *repository.CodRequestTransition) {
			c.CompletedAt = at
			r.CompletedAt = at
		},
	}
)

// ConfirmPayment moves an AWAITING_COD_PAYMENT container to ON_GOING_COD.
func (s *Service) ConfirmPayment(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error) {
	return s.progress(ctx, actor, containerID, stepConfirmPayment)
}

// StartDepotProcessing moves an ON_GOING_COD container to DEPOT_PROCESSING.
func (s *Service) StartDepotProcessing(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error) {
	return s.progress(ctx, actor, containerID, stepStartProcessing)
}

// ConfirmDelivery is the dispatcher's path from ON_GOING_COD to DEPOT_PROCESSING.
// It also stamps the delivery time.
func (s *Service) ConfirmDelivery(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error) {
	return s.progress(ctx, actor, containerID, stepConfirmDelivery)
}

// CompleteDepotProcessing moves a DEPOT_PROCESSING container to COMPLETED.
func (s *Service) CompleteDepotProcessing(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error) {
	return s.progress(ctx, actor, containerID, stepCompleteProcessing)
}

// CompleteCodProcess performs the same transition as CompleteDepotProcessing but
// logs it as COMPLETED.
//
// Deprecated: kept for clients of the older completion flow; use CompleteDepotProcessing.
func (s *Service) CompleteCodProcess(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error) {
	legacy := stepCompleteProcessing
	legacy.op = "complete_cod_process"
	legacy.action = models.AuditCompleted
	return s.progress(ctx, actor, containerID, legacy)
}

func (s *Service) canTouchContainer(actor models.Actor, c *models.Container, ownerOnly bool) bool {
	if c.OrganizationID == actor.OrgID {
		return true
	}
	if ownerOnly {
		return false
	}
	return (c.ShippingLineID != "" && c.ShippingLineID == actor.OrgID) || s.bypassesOrg(actor)
}

func (s *Service) progress(ctx context.Context, actor models.Actor, containerID string, st step) (_ *models.Container, err error) {
	defer func(start time.Time) { observe(st.op, start, err) }(time.Now())

	if !s.can(actor, auth.ObjContainer, st.act) {
		return nil, ErrUnauthorized
	}
	if containerID == "" {
		return nil, ErrInvalidInput
	}
	container, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if !s.canTouchContainer(actor, container, st.ownerOnly) {
		return nil, ErrOwnershipMismatch
	}
	if container.Status != st.from {
		return nil, ErrInvalidContainerStatus
	}
	req, err := s.requests.FindLatestApprovedByContainer(ctx, container.ID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}

	now := s.clock()
	ct := repository.ContainerTransition{
		From: []models.ContainerStatus{st.from},
		To:   st.to,
		At:   now,
	}
	rt := repository.CodRequestTransition{
		From: []models.CodRequestStatus{models.CodApproved},
		At:   now,
	}
	st.stamp(&now, &ct, &rt)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.containers.Transition(ctx, container.ID, ct)
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidContainerStatus
		}
		if req == nil {
			return nil
		}
		if _, err := s.requests.Transition(ctx, req.ID, rt); err != nil {
			return ErrPersistence.Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, persistence(err)
	}

	container.Status = st.to
	container.UpdatedAt = now
	applyStamps(container, ct)

	requestID := ""
	if req != nil {
		requestID = req.ID
	}
	s.log.WithFields(logrus.Fields{
		"container_id": container.ID,
		"request_id":   requestID,
		"status":       st.to,
	}).Info("container progressed")

	s.record(ctx, actor, st.action, requestID, container.ID, map[string]any{
		"container_number": container.ContainerNumber,
		"from_status":      st.from,
		"to_status":        st.to,
	})
	return container, nil
}

func applyStamps(c *models.Container, t repository.ContainerTransition) {
	if t.PaymentConfirmedAt != nil {
		c.PaymentConfirmedAt = t.PaymentConfirmedAt
	}
	if t.DeliveryConfirmedAt != nil {
		c.DeliveryConfirmedAt = t.DeliveryConfirmedAt
	}
	if t.DepotProcessingStartedAt != nil {
		c.DepotProcessingStartedAt = t.DepotProcessingStartedAt
	}
	if t.CompletedAt != nil {
		c.CompletedAt = t.CompletedAt
	}
}
