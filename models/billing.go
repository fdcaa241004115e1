package models

import "time"

// BillingKind separates the COD fee from the platform service fee.
type BillingKind string

const (
	BillingCodFee     BillingKind = "COD_FEE"
	BillingServiceFee BillingKind = "SERVICE_FEE"
)

// BillingTransaction is an amount owed by an organization.
type BillingTransaction struct {
	ID              string      `db:"id" json:"id"`
	OrganizationID  string      `db:"organization_id" json:"organization_id"`
	CodRequestID    string      `db:"cod_request_id" json:"cod_request_id,omitempty"`
	ContainerNumber string      `db:"container_number" json:"container_number,omitempty"`
	Kind            BillingKind `db:"kind" json:"kind"`
	Amount          int64       `db:"amount" json:"amount"`
	Description     string      `db:"description" json:"description"`
	Status          string      `db:"status" json:"status"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}
