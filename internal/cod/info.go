package cod

import (
	"context"
	"time"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

type RequestInfoInput struct {
	RequestID      string `json:"request_id" validate:"required"`
	CarrierComment string `json:"carrier_comment" validate:"required,max=2000"`
}

type SubmitInfoInput struct {
	RequestID      string `json:"request_id" validate:"required"`
	AdditionalInfo string `json:"additional_info" validate:"required,max=4000"`
}

// RequestMoreInfo moves a PENDING request to AWAITING_INFO with the carrier's question.
func (s *Service) RequestMoreInfo(ctx context.Context, actor models.Actor, in RequestInfoInput) (_ *models.CodRequest, err error) {
	defer func(start time.Time) { observe("request_more_info", start, err) }(time.Now())

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
	if req.Status != models.CodPending {
		return nil, ErrInvalidRequestStatus
	}

	now := s.clock()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Transition(ctx, req.ID, repository.CodRequestTransition{
			From:           []models.CodRequestStatus{models.CodPending},
			To:             models.CodAwaitingInfo,
			At:             now,
			CarrierComment: &in.CarrierComment,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidRequestStatus
		}
		return s.moveContainer(ctx, req.ContainerID, mustProject(models.CodPending), models.CodAwaitingInfo, now, nil)
	})
	if err != nil {
		return nil, persistence(err)
	}
	req.Status = models.CodAwaitingInfo
	req.CarrierComment = in.CarrierComment
	req.UpdatedAt = now

	s.record(ctx, actor, models.AuditInfoRequested, req.ID, req.ContainerID, map[string]any{
		"carrier_comment": in.CarrierComment,
	})
	return req, nil
}

// SubmitAdditionalInfo answers the carrier, returns the request to PENDING and
// restarts the expiry window from now.
func (s *Service) SubmitAdditionalInfo(ctx context.Context, actor models.Actor, in SubmitInfoInput) (_ *models.CodRequest, err error) {
	defer func(start time.Time) { observe("submit_additional_info", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActSubmitInfo) {
		return nil, ErrUnauthorized
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.RequestingOrgID != actor.OrgID {
		return nil, ErrNotRequester
	}
	if req.Status != models.CodAwaitingInfo {
		return nil, ErrInvalidRequestStatus
	}

	now := s.clock()
	// An answered request always gets a full day, whatever window it was created with.
	expires := now.Add(DefaultExpiryWindow)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Transition(ctx, req.ID, repository.CodRequestTransition{
			From:           []models.CodRequestStatus{models.CodAwaitingInfo},
			To:             models.CodPending,
			At:             now,
			AdditionalInfo: &in.AdditionalInfo,
			ExpiresAt:      &expires,
		})
		if err != nil {
			return ErrPersistence.Wrap(err)
		}
		if !ok {
			return ErrInvalidRequestStatus
		}
		return s.moveContainer(ctx, req.ContainerID, mustProject(models.CodAwaitingInfo), models.CodPending, now, nil)
	})
	if err != nil {
		return nil, persistence(err)
	}
	req.Status = models.CodPending
	req.AdditionalInfo = in.AdditionalInfo
	req.ExpiresAt = &expires
	req.UpdatedAt = now

	s.record(ctx, actor, models.AuditInfoSubmitted, req.ID, req.ContainerID, map[string]any{
		"additional_info": in.AdditionalInfo,
		"expires_at":      expires,
	})
	return req, nil
}
