package transport

import (
	"context"
	"time"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// Handler turns one inbound chat event into a reply. Transport adapters
// call it for every delivered message and own reply delivery themselves.
type Handler interface {
	Handle(ctx context.Context, ev domain.InboundEvent) domain.Reply
}

// Deduper suppresses duplicate transport deliveries. A nil Deduper
// disables deduplication.
type Deduper interface {
	// MarkProcessed returns false when eventID has been seen before.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}
