package cod

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/geo"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// DecideInput is the carrier's verdict. OverrideFee replaces the stored fee on approval.
type DecideInput struct {
	RequestID   string             `json:"request_id" validate:"required"`
	Decision    models.CodDecision `json:"decision" validate:"required,oneof=APPROVED DECLINED"`
	OverrideFee *int64             `json:"fee,omitempty" validate:"omitempty,min=0"`
	Reason      string             `json:"reason,omitempty" validate:"max=2000"`
}

// authorizeCarrier checks the approve permission and the approving organization.
func (s *Service) authorizeCarrier(actor models.Actor, req *models.CodRequest) error {
	if req.ApprovingOrgID != actor.OrgID && !s.bypassesOrg(actor) {
		return ErrOrgMismatch
	}
	return nil
}

// Decide approves or declines a PENDING or AWAITING_INFO request.
func (s *Service) Decide(ctx context.Context, actor models.Actor, in DecideInput) (_ *models.CodRequest, err error) {
	defer func(start time.Time) { observe("decide", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActApproveAny) {
		return nil, ErrUnauthorized
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCarrier(actor, req); err != nil {
		return nil, err
	}
	if !req.Status.IsActive() {
		return nil, ErrInvalidRequestStatus
	}
	container, err := s.loadContainer(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}

	if in.Decision == models.DecisionDeclined {
		return s.decline(ctx, actor, req, container, in.Reason)
	}
	return s.approve(ctx, actor, req, container, in)
}

func (s *Service) decline(ctx context.Context, actor models.Actor, req *models.CodRequest, container *models.Container, reason string) (*models.CodRequest, error) {
	now := s.clock()
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Transition(ctx, req.ID, repository.CodRequestTransition{
			From:          models.ActiveCodStatuses,
			To:            models.CodDeclined,
			At:            now,
			DeclinedAt:    &now,
			DeclineReason: &reason,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidRequestStatus
		}
		return s.moveContainer(ctx, container.ID, models.ContainerAwaitingCodApproval, models.CodDeclined, now, nil)
	})
	if err != nil {
		return nil, persistence(err)
	}
	req.Status = models.CodDeclined
	req.DeclinedAt = &now
	req.DeclineReason = reason
	req.UpdatedAt = now

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "container_id": container.ID}).Info("cod request declined")
	s.record(ctx, actor, models.AuditDeclined, req.ID, container.ID, map[string]any{
		"container_number":       container.ContainerNumber,
		"fee":                    req.Fee,
		"destination_depot_name": s.depotName(ctx, req.RequestedDepotID),
		"reason":                 reason,
	})
	return req, nil
}

func (s *Service) approve(ctx context.Context, actor models.Actor, req *models.CodRequest, container *models.Container, in DecideInput) (*models.CodRequest, error) {
	amount := req.Fee
	if in.OverrideFee != nil {
		amount = *in.OverrideFee
	}
	dest, err := s.depots.GetByID(ctx, req.RequestedDepotID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if dest == nil {
		return nil, ErrDepotNotFound
	}
	reloc := &repository.Relocation{DepotID: dest.ID, Address: dest.Address}
	if geo.ValidCoordinates(dest.Lat, dest.Lng) {
		lat, lng := dest.Lat, dest.Lng
		reloc.Lat, reloc.Lng = &lat, &lng
	}

	now := s.clock()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Transition(ctx, req.ID, repository.CodRequestTransition{
			From:       models.ActiveCodStatuses,
			To:         models.CodApproved,
			At:         now,
			Fee:        &amount,
			ApprovedAt: &now,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidRequestStatus
		}
		return s.moveContainer(ctx, container.ID, models.ContainerAwaitingCodApproval, models.CodApproved, now, reloc)
	})
	if err != nil {
		return nil, persistence(err)
	}
	req.Status = models.CodApproved
	req.Fee = amount
	req.ApprovedAt = &now
	req.UpdatedAt = now

	s.log.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"container_id": container.ID,
		"fee":          amount,
	}).Info("cod request approved")

	if amount > 0 && s.billing != nil {
		if err := s.billing.EmitCodFee(ctx, req.RequestingOrgID, req.ID, container.ContainerNumber, amount); err != nil {
			s.log.WithError(err).WithField("request_id", req.ID).Error("cod fee billing failed; approval kept")
		}
	}
	s.record(ctx, actor, models.AuditApproved, req.ID, container.ID, map[string]any{
		"container_number":       container.ContainerNumber,
		"fee":                    amount,
		"destination_depot_name": dest.Name,
		"reason":                 in.Reason,
	})
	return req, nil
}

// moveContainer writes the container status projected from the new request status.
func (s *Service) moveContainer(ctx context.Context, containerID string, from models.ContainerStatus, to models.CodRequestStatus, at time.Time, reloc *repository.Relocation) error {
	ok, err := s.containers.Transition(ctx, containerID, repository.ContainerTransition{
		From:     []models.ContainerStatus{from},
		To:       mustProject(to),
		At:       at,
		Relocate: reloc,
	})
	if err != nil {
		return ErrPersistence.Wrap(err)
	}
	if !ok {
		return ErrInvalidContainerStatus
	}
	return nil
}
