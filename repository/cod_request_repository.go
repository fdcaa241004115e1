package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"depotChangeManagement/models"
)

// ErrActiveRequestExists is returned by Create when the container already has
// a PENDING or AWAITING_INFO request.
var ErrActiveRequestExists = errors.New("active cod request already exists for container")

type CodRequestRepository struct {
	db *sql.DB
}

func NewCodRequestRepository(db *sql.DB) *CodRequestRepository {
	return &CodRequestRepository{db: db}
}

const codRequestColumns = `id, container_id, requesting_org_id, approving_org_id, requested_depot_id, requested_by,
original_depot_address, reason, carrier_comment, additional_info, decline_reason, fee, status,
created_at, updated_at, expires_at, approved_at, declined_at, payment_confirmed_at, depot_processing_started_at, completed_at`

// Create inserts a request. The partial unique index on active requests turns a
// concurrent second insert for the same container into ErrActiveRequestExists.
func (r *CodRequestRepository) Create(ctx context.Context, req *models.CodRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.CodPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO cod_requests (id, container_id, requesting_org_id, approving_org_id, requested_depot_id, requested_by,
    original_depot_address, reason, fee, status, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		req.ID, req.ContainerID, req.RequestingOrgID, req.ApprovingOrgID, req.RequestedDepotID, req.RequestedBy,
		req.OriginalDepotAddress, req.Reason, req.Fee, string(req.Status),
		formatTime(req.CreatedAt), formatTime(req.UpdatedAt), nullableTime(req.ExpiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActiveRequestExists
		}
		return errors.Wrap(err, "insert cod request")
	}
	return nil
}

func (r *CodRequestRepository) GetByID(ctx context.Context, id string) (*models.CodRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+codRequestColumns+` FROM cod_requests WHERE id = $1`, id)
	req, err := scanCodRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get cod request")
	}
	return req, nil
}

// FindActiveByContainer returns the PENDING or AWAITING_INFO request for the container, if any.
func (r *CodRequestRepository) FindActiveByContainer(ctx context.Context, containerID string) (*models.CodRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+codRequestColumns+`
FROM cod_requests
WHERE container_id = $1 AND status IN ('PENDING', 'AWAITING_INFO')
ORDER BY created_at DESC
LIMIT 1`, containerID)
	req, err := scanCodRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find active cod request")
	}
	return req, nil
}

// FindLatestApprovedByContainer returns the most recent APPROVED request for the container.
func (r *CodRequestRepository) FindLatestApprovedByContainer(ctx context.Context, containerID string) (*models.CodRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+codRequestColumns+`
FROM cod_requests
WHERE container_id = $1 AND status = 'APPROVED'
ORDER BY approved_at DESC, created_at DESC
LIMIT 1`, containerID)
	req, err := scanCodRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find approved cod request")
	}
	return req, nil
}

// CodRequestTransition is a conditional request write. An empty To keeps the
// current status; nil fields are left untouched.
type CodRequestTransition struct {
	From []models.CodRequestStatus
	To   models.CodRequestStatus
	At   time.Time

	Fee                      *int64
	CarrierComment           *string
	AdditionalInfo           *string
	DeclineReason            *string
	ExpiresAt                *time.Time
	ApprovedAt               *time.Time
	DeclinedAt               *time.Time
	PaymentConfirmedAt       *time.Time
	DepotProcessingStartedAt *time.Time
	CompletedAt              *time.Time
}

// Transition applies t only when the request is in one of t.From and reports whether a row changed.
func (r *CodRequestRepository) Transition(ctx context.Context, id string, t CodRequestTransition) (bool, error) {
	if len(t.From) == 0 {
		return false, errors.New("cod request transition requires at least one source status")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	var b updateBuilder
	if t.To != "" {
		b.set("status", string(t.To))
	}
	b.set("updated_at", formatTime(at))
	if t.Fee != nil {
		b.set("fee", *t.Fee)
	}
	if t.CarrierComment != nil {
		b.set("carrier_comment", *t.CarrierComment)
	}
	if t.AdditionalInfo != nil {
		b.set("additional_info", *t.AdditionalInfo)
	}
	if t.DeclineReason != nil {
		b.set("decline_reason", *t.DeclineReason)
	}
	for _, ts := range []struct {
		col string
		v   *time.Time
	}{
		{"expires_at", t.ExpiresAt},
		{"approved_at", t.ApprovedAt},
		{"declined_at", t.DeclinedAt},
		{"payment_confirmed_at", t.PaymentConfirmedAt},
		{"depot_processing_started_at", t.DepotProcessingStartedAt},
		{"completed_at", t.CompletedAt},
	} {
		if ts.v != nil {
			b.set(ts.col, formatTime(*ts.v))
		}
	}
	query := `UPDATE cod_requests SET ` + strings.Join(b.sets, ", ") +
		` WHERE id = ` + b.arg(id) + ` AND status IN ` + b.in(statusStrings(t.From))

	res, err := conn(ctx, r.db).ExecContext(ctx, query, b.args...)
	if err != nil {
		return false, errors.Wrap(err, "update cod request")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n == 1, nil
}

// DeleteIfStatus removes the request only while it is in one of the given statuses.
func (r *CodRequestRepository) DeleteIfStatus(ctx context.Context, id string, from ...models.CodRequestStatus) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("delete requires at least one status")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b updateBuilder
	query := `DELETE FROM cod_requests WHERE id = ` + b.arg(id) + ` AND status IN ` + b.in(statusStrings(from))
	res, err := conn(ctx, r.db).ExecContext(ctx, query, b.args...)
	if err != nil {
		return false, errors.Wrap(err, "delete cod request")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n == 1, nil
}

func statusStrings(in []models.CodRequestStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func scanCodRequest(s rowScanner) (*models.CodRequest, error) {
	var req models.CodRequest
	var status, createdAt, updatedAt string
	var expiresAt, approvedAt, declinedAt, paymentAt, processingAt, completedAt sql.NullString
	if err := s.Scan(&req.ID, &req.ContainerID, &req.RequestingOrgID, &req.ApprovingOrgID, &req.RequestedDepotID, &req.RequestedBy,
		&req.OriginalDepotAddress, &req.Reason, &req.CarrierComment, &req.AdditionalInfo, &req.DeclineReason, &req.Fee, &status,
		&createdAt, &updatedAt, &expiresAt, &approvedAt, &declinedAt, &paymentAt, &processingAt, &completedAt); err != nil {
		return nil, err
	}
	req.Status = models.CodRequestStatus(status)
	var err error
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if req.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst **time.Time
		src sql.NullString
	}{
		{&req.ExpiresAt, expiresAt},
		{&req.ApprovedAt, approvedAt},
		{&req.DeclinedAt, declinedAt},
		{&req.PaymentConfirmedAt, paymentAt},
		{&req.DepotProcessingStartedAt, processingAt},
		{&req.CompletedAt, completedAt},
	} {
		if *f.dst, err = parseNullTime(f.src); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
