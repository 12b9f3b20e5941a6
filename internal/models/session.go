package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session identifies the signed-in user. All task and supplier data is scoped to it.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authenticated reports whether the session carries an identity that has not expired.
func (s Session) Authenticated(now time.Time) bool {
	if s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
