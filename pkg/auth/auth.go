package auth

import "time"

// SessionTTL is how long a sign-in session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "persely_session"

// Session binds a bearer token to a signed-in user.
type Session struct {
	Token     string
	UserId    int
	CreatedAt time.Time
	ExpiresAt time.Time
}
