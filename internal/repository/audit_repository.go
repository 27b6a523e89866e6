package repository

import (
	"context"
	"database/sql"

	"github.com/vergon/rgr-api/internal/model"
)

// AuditRepo appends audit log rows. The table is insert-only; nothing in
// the application updates or deletes entries.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Create appends one audit entry and returns its id.
func (r *AuditRepo) Create(ctx context.Context, e model.AuditLog) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs (user_login, company_id, action, resource, resource_id, details, ip_address, user_agent)
		 VALUES (?,?,?,?,?,?,?,?)`,
		e.UserLogin, e.CompanyID, e.Action, e.Resource, nullStr(e.ResourceID),
		nullStr(e.Details), nullStr(e.IPAddress), nullStr(e.UserAgent))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentByUser lists a user's most recent audit entries, newest first.
func (r *AuditRepo) RecentByUser(ctx context.Context, login string, companyID int64, limit int) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_login, company_id, action, resource, resource_id, details, ip_address, user_agent, created_at
		 FROM audit_logs WHERE user_login=? AND company_id=? ORDER BY created_at DESC LIMIT ?`,
		login, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		var e model.AuditLog
		var resourceID, details, ip, agent sql.NullString
		if err := rows.Scan(&e.ID, &e.UserLogin, &e.CompanyID, &e.Action, &e.Resource,
			&resourceID, &details, &ip, &agent, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ResourceID = resourceID.String
		e.Details = details.String
		e.IPAddress = ip.String
		e.UserAgent = agent.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
