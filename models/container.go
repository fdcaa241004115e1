package models

import "time"

// ContainerStatus mirrors the COD lifecycle on the container row.
type ContainerStatus string

const (
	ContainerAvailable           ContainerStatus = "AVAILABLE"
	ContainerAwaitingCodApproval ContainerStatus = "AWAITING_COD_APPROVAL"
	ContainerAwaitingCodPayment  ContainerStatus = "AWAITING_COD_PAYMENT"
	ContainerOnGoingCod          ContainerStatus = "ON_GOING_COD"
	ContainerDepotProcessing     ContainerStatus = "DEPOT_PROCESSING"
	ContainerCompleted           ContainerStatus = "COMPLETED"
	ContainerCodRejected         ContainerStatus = "COD_REJECTED"
)

// Container is an import container owned by a trucking organization.
// ShippingLineID is the approving organization for COD requests; empty when unassigned.
type Container struct {
	ID              string          `db:"id" json:"id"`
	ContainerNumber string          `db:"container_number" json:"container_number"`
	OrganizationID  string          `db:"organization_id" json:"organization_id"`
	ShippingLineID  string          `db:"shipping_line_id" json:"shipping_line_id,omitempty"`
	DepotID         string          `db:"depot_id" json:"depot_id"`
	DropOffAddress  string          `db:"drop_off_address" json:"drop_off_address"`
	Lat             *float64        `db:"lat" json:"lat,omitempty"`
	Lng             *float64        `db:"lng" json:"lng,omitempty"`
	Status          ContainerStatus `db:"status" json:"status"`

	PaymentConfirmedAt       *time.Time `db:"payment_confirmed_at" json:"payment_confirmed_at,omitempty"`
	DeliveryConfirmedAt      *time.Time `db:"delivery_confirmed_at" json:"delivery_confirmed_at,omitempty"`
	DepotProcessingStartedAt *time.Time `db:"depot_processing_started_at" json:"depot_processing_started_at,omitempty"`
	CompletedAt              *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
}
