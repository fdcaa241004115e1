package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"depotChangeManagement/models"
)

// AuditRepository appends and reads audit_logs. Rows are never updated or deleted.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts e. Details must hold JSON-compatible values (see structpb.NewValue).
func (r *AuditRepository) Append(ctx context.Context, e *models.AuditLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	details, err := encodeDetails(e.Details)
	if err != nil {
		return errors.Wrap(err, "encode audit details")
	}
	_, err = conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO audit_logs (id, cod_request_id, container_id, actor_user_id, actor_org_name, action, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, nullableString(e.RequestID), nullableString(e.ContainerID), nullableString(e.ActorUserID),
		e.ActorOrgName, string(e.Action), details, formatTime(e.CreatedAt))
	if err != nil {
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}

// ListByRequest returns the entries of one request in chronological order.
func (r *AuditRepository) ListByRequest(ctx context.Context, requestID string) ([]models.AuditLogEntry, error) {
	return r.list(ctx, `WHERE cod_request_id = $1`, requestID)
}

// ListByContainer returns every entry logged against the container, including
// those whose request was deleted.
func (r *AuditRepository) ListByContainer(ctx context.Context, containerID string) ([]models.AuditLogEntry, error) {
	return r.list(ctx, `WHERE container_id = $1`, containerID)
}

func (r *AuditRepository) list(ctx context.Context, where string, arg any) ([]models.AuditLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
SELECT id, cod_request_id, container_id, actor_user_id, actor_org_name, action, details, created_at
FROM audit_logs `+where+`
ORDER BY created_at ASC, id ASC`, arg)
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	defer rows.Close()

	var out []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		var requestID, containerID, actorID sql.NullString
		var action, details, createdAt string
		if err := rows.Scan(&e.ID, &requestID, &containerID, &actorID, &e.ActorOrgName, &action, &details, &createdAt); err != nil {
			return nil, err
		}
		e.RequestID = requestID.String
		e.ContainerID = containerID.String
		e.ActorUserID = actorID.String
		e.Action = models.AuditAction(action)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if e.Details, err = decodeDetails(details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeDetails(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDetails(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return map[string]any{}, nil
	}
	var s structpb.Struct
	if err := protojson.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Wrap(err, "decode audit details")
	}
	return s.AsMap(), nil
}
