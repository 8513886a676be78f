package memory

import (
	"context"
	"sync"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// AuditRepo is the in-memory audit store used when no database is
// configured. It keeps a bounded window of recent records.
type AuditRepo struct {
	mu      sync.RWMutex
	records []*domain.AuditRecord
	maxSize int
}

// NewAuditRepo creates an in-memory audit repository.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{maxSize: 1000}
}

func (r *AuditRepo) Save(ctx context.Context, rec *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > r.maxSize {
		r.records = r.records[len(r.records)-r.maxSize:]
	}
	return nil
}

func (r *AuditRepo) RecentByUser(ctx context.Context, platform, handle string, limit int) ([]*domain.AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.records[i]
		if rec.Platform == platform && rec.Handle == handle {
			out = append(out, rec)
		}
	}
	return out, nil
}
