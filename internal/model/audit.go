package model

import "time"

// AuditLog represents a row in the `audit_logs` table: one state-changing
// (or read) action by an authenticated user. Details holds a sanitized
// JSON snapshot of the request; passwords and tokens are redacted before
// it is written.
type AuditLog struct {
	ID         int64
	UserLogin  string
	CompanyID  int64
	Action     string
	Resource   string
	ResourceID string
	Details    string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
