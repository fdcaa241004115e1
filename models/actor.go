package models

// Actor is the caller of a lifecycle operation, resolved from the users table.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	OrgID    string `json:"org_id"`
	OrgName  string `json:"org_name"`
}
