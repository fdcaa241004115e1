package models

// OrganizationKind distinguishes trucking companies from shipping lines.
type OrganizationKind string

const (
	OrganizationTrucking     OrganizationKind = "TRUCKING"
	OrganizationShippingLine OrganizationKind = "SHIPPING_LINE"
	OrganizationPlatform     OrganizationKind = "PLATFORM"
)

// Organization owns users and containers. Shipping lines approve COD requests.
type Organization struct {
	ID   string           `db:"id" json:"id"`
	Name string           `db:"name" json:"name"`
	Kind OrganizationKind `db:"kind" json:"kind"`
}
