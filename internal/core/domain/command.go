package domain

// ParsedCommand is the result of normalizing raw chat text.
// Keyword is lower-cased; Args preserve original token order.
type ParsedCommand struct {
	Keyword string
	Args    []string
}

// IsEmpty reports whether no command keyword survived normalization.
func (c ParsedCommand) IsEmpty() bool {
	return c.Keyword == ""
}

// InboundEvent is the platform-agnostic shape every transport adapter
// translates its native event into.
type InboundEvent struct {
	ID               string
	RawText          string
	Platform         Platform
	SenderHandle     string
	IsPrivateChannel bool
}

// Sender returns the identity of the user who produced the event.
func (e InboundEvent) Sender() UserIdentity {
	return UserIdentity{Platform: e.Platform, Handle: e.SenderHandle}
}

// Reply is the display text returned to the transport adapter.
// AutoDeleteAfterSeconds > 0 asks the transport to delete the delivered
// message after the given delay (used for private key exports).
type Reply struct {
	Text                   string
	AutoDeleteAfterSeconds int
}
