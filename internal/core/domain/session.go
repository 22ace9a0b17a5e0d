package domain

import "time"

// Session is the server-side record behind an opaque bearer token. Only the
// digest of the token is ever stored.
type Session struct {
	TokenHash string
	ClienteID string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session may still authenticate requests.
func (s *Session) Active() bool {
	return s != nil && s.RevokedAt == nil
}
