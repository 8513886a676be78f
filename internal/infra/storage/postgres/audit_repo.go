package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// AuditRepo implements storage.AuditRepository using PostgreSQL.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new PostgreSQL audit repository.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Save(ctx context.Context, rec *domain.AuditRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO command_audit (id, platform, handle, keyword, status, detail, created_at)
		VALUES (:id, :platform, :handle, :keyword, :status, :detail, :created_at)`, rec)
	if err != nil {
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

func (r *AuditRepo) RecentByUser(ctx context.Context, platform, handle string, limit int) ([]*domain.AuditRecord, error) {
	var out []*domain.AuditRecord
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, platform, handle, keyword, status, detail, created_at
		FROM command_audit
		WHERE platform = $1 AND handle = $2
		ORDER BY created_at DESC
		LIMIT $3`, platform, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return out, nil
}
