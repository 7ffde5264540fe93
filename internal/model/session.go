package model

import "time"

// Session is a stored login for one named profile. Tokens are kept so that
// consecutive commands reuse the same bearer token and refresh cookie.
type Session struct {
	Profile      string     `json:"profile" db:"profile"`
	BaseURL      string     `json:"base_url" db:"base_url"`
	Email        string     `json:"email" db:"email"`
	UserID       string     `json:"user_id" db:"user_id"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
