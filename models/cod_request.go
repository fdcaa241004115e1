package models

import "time"

// CodRequestStatus represents the lifecycle state of a change-of-depot request.
type CodRequestStatus string

const (
	CodPending      CodRequestStatus = "PENDING"
	CodAwaitingInfo CodRequestStatus = "AWAITING_INFO"
	CodApproved     CodRequestStatus = "APPROVED"
	CodDeclined     CodRequestStatus = "DECLINED"
	CodExpired      CodRequestStatus = "EXPIRED"
	CodReversed     CodRequestStatus = "REVERSED"
)

// ActiveCodStatuses are the statuses that block a new request for the same container.
var ActiveCodStatuses = []CodRequestStatus{CodPending, CodAwaitingInfo}

// IsActive reports whether the request still awaits a carrier decision.
func (s CodRequestStatus) IsActive() bool {
	return s == CodPending || s == CodAwaitingInfo
}

// CodDecision is the carrier's verdict on a request.
type CodDecision string

const (
	DecisionApproved CodDecision = "APPROVED"
	DecisionDeclined CodDecision = "DECLINED"
)

// CodRequest is a request to drop an import container at a different depot.
// OriginalDepotAddress is a snapshot taken at creation time, not a live reference.
// Fee zero means the change is free.
type CodRequest struct {
	ID                   string           `db:"id" json:"id"`
	ContainerID          string           `db:"container_id" json:"container_id"`
	RequestingOrgID      string           `db:"requesting_org_id" json:"requesting_org_id"`
	ApprovingOrgID       string           `db:"approving_org_id" json:"approving_org_id"`
	RequestedDepotID     string           `db:"requested_depot_id" json:"requested_depot_id"`
	RequestedBy          string           `db:"requested_by" json:"requested_by"`
	OriginalDepotAddress string           `db:"original_depot_address" json:"original_depot_address"`
	Reason               string           `db:"reason" json:"reason"`
	CarrierComment       string           `db:"carrier_comment" json:"carrier_comment,omitempty"`
	AdditionalInfo       string           `db:"additional_info" json:"additional_info,omitempty"`
	DeclineReason        string           `db:"decline_reason" json:"decline_reason,omitempty"`
	Fee                  int64            `db:"fee" json:"fee"`
	Status               CodRequestStatus `db:"status" json:"status"`

	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
	ExpiresAt                *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	ApprovedAt               *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	DeclinedAt               *time.Time `db:"declined_at" json:"declined_at,omitempty"`
	PaymentConfirmedAt       *time.Time `db:"payment_confirmed_at" json:"payment_confirmed_at,omitempty"`
	DepotProcessingStartedAt *time.Time `db:"depot_processing_started_at" json:"depot_processing_started_at,omitempty"`
	CompletedAt              *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
