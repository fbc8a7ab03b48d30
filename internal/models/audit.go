package models

import "time"

// Audit actions recorded by the API. Sign-in events come from the auth
// service; the rest are written by the audit middleware on mutating routes.
const (
	AuditActionLogin        = "auth.login"
	AuditActionLogout       = "auth.logout"
	AuditActionActivatePlan = "plan.activate"
	AuditActionCreateExport = "export.create"
)

// AuditLog is one row of the audit trail.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
