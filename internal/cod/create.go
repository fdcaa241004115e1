package cod

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// CreateInput asks to drop a container at another depot.
// ClientFee is what the requester was shown; the stored fee comes from the fee matrix.
type CreateInput struct {
	ContainerID        string `json:"container_id" validate:"required"`
	DestinationDepotID string `json:"destination_depot_id" validate:"required"`
	Reason             string `json:"reason" validate:"required,max=2000"`
	ClientFee          *int64 `json:"fee,omitempty" validate:"omitempty,min=0"`
}

// Create opens a PENDING request and moves the container to AWAITING_COD_APPROVAL.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (_ *models.CodRequest, err error) {
	defer func(start time.Time) { observe("create", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActCreate) {
		return nil, ErrUnauthorized
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	container, err := s.loadContainer(ctx, in.ContainerID)
	if err != nil {
		return nil, err
	}
	if container.OrganizationID != actor.OrgID {
		return nil, ErrOwnershipMismatch
	}
	if container.Status != models.ContainerAvailable {
		return nil, ErrInvalidContainerStatus
	}
	if container.ShippingLineID == "" {
		return nil, ErrMissingApprovingOrg
	}
	active, err := s.requests.FindActiveByContainer(ctx, container.ID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if active != nil {
		return nil, ErrDuplicateActiveRequest
	}
	if in.DestinationDepotID == container.DepotID {
		return nil, ErrSameDepot
	}
	dest, err := s.depots.GetByID(ctx, in.DestinationDepotID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if dest == nil {
		return nil, ErrDepotNotFound
	}
	synced, err := s.depots.IsSynced(ctx, dest.ID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	if !synced {
		return nil, ErrDepotNotSynced
	}
	amount, err := s.resolveFee(ctx, container, dest.ID, in.ClientFee)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	expires := now.Add(s.opts.ExpiryWindow)
	req := &models.CodRequest{
		ContainerID:          container.ID,
		RequestingOrgID:      actor.OrgID,
		ApprovingOrgID:       container.ShippingLineID,
		RequestedDepotID:     dest.ID,
		RequestedBy:          actor.UserID,
		OriginalDepotAddress: container.DropOffAddress,
		Reason:               in.Reason,
		Fee:                  amount,
		Status:               models.CodPending,
		CreatedAt:            now,
		UpdatedAt:            now,
		ExpiresAt:            &expires,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrActiveRequestExists) {
				return ErrDuplicateActiveRequest
			}
			return ErrPersistence.Wrap(err)
		}
		ok, err := s.containers.Transition(ctx, container.ID, repository.ContainerTransition{
			From: []models.ContainerStatus{models.ContainerAvailable},
			To:   mustProject(models.CodPending),
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
		return nil, persistence(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"container_id": container.ID,
		"fee":          amount,
	}).Info("cod request created")

	s.record(ctx, actor, models.AuditCreated, req.ID, container.ID, map[string]any{
		"container_number":       container.ContainerNumber,
		"original_depot_name":    s.depotName(ctx, container.DepotID),
		"original_depot_address": container.DropOffAddress,
		"destination_depot_name": dest.Name,
		"reason":                 in.Reason,
		"fee":                    amount,
	})
	return req, nil
}

// resolveFee recomputes the fee from the matrix. The client fee is only kept when the matrix has no row.
func (s *Service) resolveFee(ctx context.Context, container *models.Container, destID string, clientFee *int64) (int64, error) {
	q, err := s.fees.Compute(ctx, container.DepotID, destID)
	switch {
	case err == nil:
		if clientFee != nil && *clientFee != q.Fee {
			entry := s.log.WithFields(logrus.Fields{
				"container_id": container.ID,
				"client_fee":   *clientFee,
				"matrix_fee":   q.Fee,
			})
			if s.opts.StrictFee {
				entry.Warn("rejecting cod request with mismatched fee")
				return 0, ErrFeeMismatch
			}
			entry.Warn("client fee differs from fee matrix; using matrix fee")
		}
		return q.Fee, nil
	case errors.Is(err, fee.ErrFeeNotFound):
		if clientFee == nil {
			s.log.WithField("container_id", container.ID).Warn("no fee matrix row and no client fee; request is free")
			return 0, nil
		}
		return *clientFee, nil
	default:
		return 0, ErrPersistence.Wrap(err)
	}
}
