package domain

import "time"

// AuditRecord is one processed command, kept for the history command and
// operational forensics. Secrets never enter the audit log.
type AuditRecord struct {
	ID        string    `db:"id"`
	Platform  string    `db:"platform"`
	Handle    string    `db:"handle"`
	Keyword   string    `db:"keyword"`
	Status    string    `db:"status"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}
