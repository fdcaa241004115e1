package models

// Role is the platform role carried by a user and by the JWT principal.
type Role string

const (
	RoleDispatcher    Role = "dispatcher"
	RoleCarrierAdmin  Role = "carrier_admin"
	RolePlatformAdmin Role = "platform_admin"
)

// User represents a platform user. Every user belongs to exactly one organization.
// It maps to the `users` table.
type User struct {
	ID             string `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	Role           Role   `db:"role" json:"role"`
	OrganizationID string `db:"organization_id" json:"organization_id"`
}
