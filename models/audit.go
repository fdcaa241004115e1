package models

import "time"

// AuditAction tags a lifecycle transition in the audit log.
type AuditAction string

const (
	AuditCreated                  AuditAction = "CREATED"
	AuditApproved                 AuditAction = "APPROVED"
	AuditDeclined                 AuditAction = "DECLINED"
	AuditInfoRequested            AuditAction = "INFO_REQUESTED"
	AuditInfoSubmitted            AuditAction = "INFO_SUBMITTED"
	AuditCancelled                AuditAction = "CANCELLED"
	AuditPaymentConfirmed         AuditAction = "PAYMENT_CONFIRMED"
	AuditDepotProcessingStarted   AuditAction = "DEPOT_PROCESSING_STARTED"
	AuditDeliveryConfirmed        AuditAction = "DELIVERY_CONFIRMED"
	AuditDepotProcessingCompleted AuditAction = "DEPOT_PROCESSING_COMPLETED"
	AuditCompleted                AuditAction = "COMPLETED"
	AuditExpired                  AuditAction = "EXPIRED"
)

// AuditLogEntry is an append-only record. Rows are never updated or deleted.
// RequestID is empty for transitions logged against the container only.
// ActorOrgName is denormalized at write time.
type AuditLogEntry struct {
	ID           string         `db:"id" json:"id"`
	RequestID    string         `db:"cod_request_id" json:"cod_request_id,omitempty"`
	ContainerID  string         `db:"container_id" json:"container_id,omitempty"`
	ActorUserID  string         `db:"actor_user_id" json:"actor_user_id,omitempty"`
	ActorOrgName string         `db:"actor_org_name" json:"actor_org_name"`
	Action       AuditAction    `db:"action" json:"action"`
	Details      map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
