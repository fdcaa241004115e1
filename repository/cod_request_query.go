package repository

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"depotChangeManagement/models"
)

// ListCodRequestsParams represents filters and keyset pagination for ListPage.
// An empty org filter matches every organization.
type ListCodRequestsParams struct {
	ApprovingOrgID  string
	RequestingOrgID string
	ContainerID     string
	Statuses        []models.CodRequestStatus
	PageSize        int
	After           *Cursor
}

// Cursor is the keyset position of the last row of a page (created_at desc, id desc).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor returns an opaque page token.
func EncodeCursor(c Cursor) string {
	return base64.RawURLEncoding.EncodeToString([]byte(formatTime(c.CreatedAt) + "|" + c.ID))
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token yields nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.New("invalid page token")
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, errors.New("invalid page token")
	}
	t, err := parseTime(ts)
	if err != nil {
		return nil, errors.New("invalid page token")
	}
	return &Cursor{CreatedAt: t, ID: id}, nil
}

// ListPage returns requests matching the filters ordered by created_at desc, id desc.
func (r *CodRequestRepository) ListPage(ctx context.Context, p ListCodRequestsParams) ([]models.CodRequest, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b updateBuilder
	var where []string
	if p.ApprovingOrgID != "" {
		where = append(where, "approving_org_id = "+b.arg(p.ApprovingOrgID))
	}
	if p.RequestingOrgID != "" {
		where = append(where, "requesting_org_id = "+b.arg(p.RequestingOrgID))
	}
	if p.ContainerID != "" {
		where = append(where, "container_id = "+b.arg(p.ContainerID))
	}
	if len(p.Statuses) > 0 {
		where = append(where, "status IN "+b.in(statusStrings(p.Statuses)))
	}
	if p.After != nil {
		ts := b.arg(formatTime(p.After.CreatedAt))
		where = append(where, "(created_at < "+ts+" OR (created_at = "+ts+" AND id < "+b.arg(p.After.ID)+"))")
	}

	query := `SELECT ` + codRequestColumns + ` FROM cod_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + b.arg(p.PageSize)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list cod requests")
	}
	defer rows.Close()

	var out []models.CodRequest
	for rows.Next() {
		req, err := scanCodRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpired returns active requests whose expires_at is at or before now, oldest first.
func (r *CodRequestRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.CodRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+codRequestColumns+`
FROM cod_requests
WHERE status IN ('PENDING', 'AWAITING_INFO')
  AND expires_at IS NOT NULL
  AND expires_at <= $1
ORDER BY expires_at ASC, id ASC
LIMIT $2`, formatTime(now), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list expired cod requests")
	}
	defer rows.Close()

	var out []models.CodRequest
	for rows.Next() {
		req, err := scanCodRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
