// Package service holds logic that sits between handlers and stores:
// the audit trail writer and the broker publisher it feeds.
package service

import (
	"context"
	"log"
	"time"

	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/queue"
	"github.com/vergon/rgr-api/internal/repository"
)

// AuditTrail persists audit entries and fans them out to the broker.
// Both sides are best effort: a failed write is logged, never surfaced,
// so auditing can never break the request that triggered it.
type AuditTrail struct {
	repo *repository.AuditRepo
}

func NewAuditTrail(repo *repository.AuditRepo) *AuditTrail {
	return &AuditTrail{repo: repo}
}

// Record writes the entry to MySQL and publishes an AuditRecordedEvent.
func (t *AuditTrail) Record(ctx context.Context, entry model.AuditLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if _, err := t.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: persist entry failed: %v", err)
	}

	ev := queue.AuditRecordedEvent{
		UserLogin:  entry.UserLogin,
		CompanyID:  entry.CompanyID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		RecordedAt: entry.CreatedAt.Format(time.RFC3339),
	}
	_ = PublishAuditRecorded(ctx, ev)
}
