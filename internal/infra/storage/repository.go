package storage

import (
	"context"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// AuditRepository stores processed-command records.
type AuditRepository interface {
	// Save persists one record. Failures must not fail the command.
	Save(ctx context.Context, rec *domain.AuditRecord) error

	// RecentByUser returns the newest records for one sender, newest first.
	RecentByUser(ctx context.Context, platform, handle string, limit int) ([]*domain.AuditRecord, error)
}
