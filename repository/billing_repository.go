package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"depotChangeManagement/models"
)

type BillingRepository struct {
	db *sql.DB
}

func NewBillingRepository(db *sql.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// Create records a transaction. Status defaults to PENDING.
func (r *BillingRepository) Create(ctx context.Context, t *models.BillingTransaction) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "PENDING"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO billing_transactions (id, organization_id, cod_request_id, container_number, kind, amount, description, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.OrganizationID, nullableString(t.CodRequestID), t.ContainerNumber, string(t.Kind), t.Amount,
		t.Description, t.Status, formatTime(t.CreatedAt))
	if err != nil {
		return errors.Wrap(err, "insert billing transaction")
	}
	return nil
}

func (r *BillingRepository) ListByRequest(ctx context.Context, requestID string) ([]models.BillingTransaction, error) {
	return r.list(ctx, `WHERE cod_request_id = $1`, requestID)
}

func (r *BillingRepository) ListByOrganization(ctx context.Context, orgID string) ([]models.BillingTransaction, error) {
	return r.list(ctx, `WHERE organization_id = $1`, orgID)
}

func (r *BillingRepository) list(ctx context.Context, where string, arg any) ([]models.BillingTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
SELECT id, organization_id, cod_request_id, container_number, kind, amount, description, status, created_at
FROM billing_transactions `+where+`
ORDER BY created_at ASC, id ASC`, arg)
	if err != nil {
		return nil, errors.Wrap(err, "list billing transactions")
	}
	defer rows.Close()

	var out []models.BillingTransaction
	for rows.Next() {
		var t models.BillingTransaction
		var requestID sql.NullString
		var kind, createdAt string
		if err := rows.Scan(&t.ID, &t.OrganizationID, &requestID, &t.ContainerNumber, &kind, &t.Amount, &t.Description, &t.Status, &createdAt); err != nil {
			return nil, err
		}
		t.CodRequestID = requestID.String
		t.Kind = models.BillingKind(kind)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
