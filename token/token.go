// Package token implements the token state shared by manager and caches.
package token

import (
	"encoding/json"
	"time"
)

// Token holds one fully-populated token state: the bearer access token,
// the optional refresh token, the absolute expiry deadline and the granted
// scope. The zero value means "no token acquired yet".
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Deadline     time.Time `json:"deadline"`
	Scope        string    `json:"scope,omitempty"`
}

// NewTokenFromJSON creates token from json.
func NewTokenFromJSON(buf []byte) (Token, error) {
	var t Token
	err := json.Unmarshal(buf, &t)
	if err != nil {
		return t, err
	}
	return t, nil
}

// ExportJSON exports token as json.
func (t Token) ExportJSON() ([]byte, error) {
	return json.Marshal(t)
}

// IsZero reports whether no token has been acquired.
func (t Token) IsZero() bool {
	return t.AccessToken == ""
}

// NeedsRefresh reports whether the token entered the refresh window:
// now >= deadline - buffer. A zero deadline never expires.
func (t Token) NeedsRefresh(now time.Time, buffer time.Duration) bool {
	if t.Deadline.IsZero() {
		return false
	}
	return !now.Before(t.Deadline.Add(-buffer))
}

// SetExpiration schedules token expiration time.
func (t *Token) SetExpiration(deadline time.Time) {
	t.Deadline = deadline
}
