package domain

import "time"

// Session is the server-side record backing a signed token. Created at
// login, read back by the token authority at validation time.
type Session struct {
	ID        string
	UserID    string
	ServiceID string
	Role      string
	CreatedAt time.Time
	Expiry    *time.Time // nil means the session never expires
}

// Expired reports whether the session is past its expiry at the given time.
// Sessions without an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	return s.Expiry != nil && now.After(*s.Expiry)
}
