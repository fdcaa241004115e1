package cod

import (
	"context"
	"time"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// ListInput filters the caller's requests. PageToken comes from a previous page.
type ListInput struct {
	ContainerID string                    `json:"container_id,omitempty"`
	Statuses    []models.CodRequestStatus `json:"statuses,omitempty" validate:"dive,oneof=PENDING AWAITING_INFO APPROVED DECLINED EXPIRED REVERSED"`
	PageSize    int                       `json:"page_size,omitempty" validate:"gte=0,lte=100"`
	PageToken   string                    `json:"page_token,omitempty"`
}

// Page is one page of requests. NextPageToken is empty on the last page.
type Page struct {
	Items         []models.CodRequest `json:"items"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

// AuditQuery selects a trail by request or, for cancelled requests, by container.
type AuditQuery struct {
	RequestID   string `json:"request_id,omitempty" validate:"required_without=ContainerID"`
	ContainerID string `json:"container_id,omitempty" validate:"required_without=RequestID"`
}

func (s *Service) canSeeRequest(actor models.Actor, req *models.CodRequest) bool {
	return req.RequestingOrgID == actor.OrgID || req.ApprovingOrgID == actor.OrgID || s.bypassesOrg(actor)
}

// GetRequest returns a request visible to the caller's organization.
func (s *Service) GetRequest(ctx context.Context, actor models.Actor, requestID string) (_ *models.CodRequest, err error) {
	defer func(start time.Time) { observe("get_request", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActRead) {
		return nil, ErrUnauthorized
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.canSeeRequest(actor, req) {
		return nil, ErrOrgMismatch
	}
	return req, nil
}

// ListRequests pages through the caller's requests, newest first. Carriers see
// requests awaiting their decision, dispatchers see their own, platform admins see all.
func (s *Service) ListRequests(ctx context.Context, actor models.Actor, in ListInput) (_ *Page, err error) {
	defer func(start time.Time) { observe("list_requests", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActRead) {
		return nil, ErrUnauthorized
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	after, err := repository.DecodeCursor(in.PageToken)
	if err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}
	size := in.PageSize
	if size == 0 {
		size = 20
	}
	p := repository.ListCodRequestsParams{ContainerID: in.ContainerID, Statuses: in.Statuses, PageSize: size, After: after}
	switch {
	case s.bypassesOrg(actor):
	case s.can(actor, auth.ObjCodRequest, auth.ActApproveAny):
		p.ApprovingOrgID = actor.OrgID
	default:
		p.RequestingOrgID = actor.OrgID
	}
	items, err := s.requests.ListPage(ctx, p)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	page := &Page{Items: items}
	if len(items) == size {
		last := items[len(items)-1]
		page.NextPageToken = repository.EncodeCursor(repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// AuditTrail returns the audit entries of a request, or of a container when no request id is given.
func (s *Service) AuditTrail(ctx context.Context, actor models.Actor, q AuditQuery) (_ []models.AuditLogEntry, err error) {
	defer func(start time.Time) { observe("audit_trail", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActRead) {
		return nil, ErrUnauthorized
	}
	if err := s.check(q); err != nil {
		return nil, err
	}
	if q.RequestID != "" {
		req, err := s.loadRequest(ctx, q.RequestID)
		if err != nil {
			return nil, err
		}
		if !s.canSeeRequest(actor, req) {
			return nil, ErrOrgMismatch
		}
		entries, err := s.audit.Trail(ctx, req.ID)
		if err != nil {
			return nil, ErrPersistence.Wrap(err)
		}
		return entries, nil
	}
	container, err := s.loadContainer(ctx, q.ContainerID)
	if err != nil {
		return nil, err
	}
	if !s.canTouchContainer(actor, container, false) {
		return nil, ErrOwnershipMismatch
	}
	entries, err := s.audit.ContainerTrail(ctx, container.ID)
	if err != nil {
		return nil, ErrPersistence.Wrap(err)
	}
	return entries, nil
}

// QuoteFee previews the fee for moving one of the caller's containers to another depot.
func (s *Service) QuoteFee(ctx context.Context, actor models.Actor, containerID, destinationDepotID string) (_ *fee.Quote, err error) {
	defer func(start time.Time) { observe("quote_fee", start, err) }(time.Now())

	if !s.can(actor, auth.ObjCodRequest, auth.ActRead) {
		return nil, ErrUnauthorized
	}
	if containerID == "" || destinationDepotID == "" {
		return nil, ErrInvalidInput
	}
	container, err := s.loadContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if !s.canTouchContainer(actor, container, false) {
		return nil, ErrOwnershipMismatch
	}
	q, err := s.fees.Compute(ctx, container.DepotID, destinationDepotID)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
