package domain

// Platform identifies a supported chat platform.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformDiscord  Platform = "discord"
)

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformTelegram, PlatformDiscord:
		return true
	}
	return false
}

// UserIdentity identifies a sender or recipient on one chat platform.
// It is constructed per inbound event and never persisted by the bot.
type UserIdentity struct {
	Platform Platform
	Handle   string
}

// Key returns the canonical "platform:handle" form used for keyed state.
func (u UserIdentity) Key() string {
	return string(u.Platform) + ":" + u.Handle
}
