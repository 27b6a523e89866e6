// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// AuditRecordedEvent is published whenever an audit entry is written. It
// carries the full entry so downstream consumers can log or alert without
// touching the primary database.
type AuditRecordedEvent struct {
	UserLogin  string `json:"user_login"`
	CompanyID  int64  `json:"company_id"`
	Action     string `json:"action"`
	Resource   string `json:"resource"`
	ResourceID string `json:"resource_id,omitempty"`
	Details    string `json:"details,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RecordedAt string `json:"recorded_at"`
}
