package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Status describes the held token for display. It never influences
// IsAuthenticated.
type Status struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Subject       string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired       bool       `json:"expired" yaml:"expired"`
}

// Status decodes the token's claims without verifying its signature
func (s *Session) Status() Status {
	return statusOf(s.Token(), s.IsAuthenticated(), time.Now())
}

func statusOf(token string, authenticated bool, now time.Time) Status {
	st := Status{Authenticated: authenticated}
	if token == "" {
		return st
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque tokens are fine, there is just nothing to show
		return st
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		st.Subject = sub
	} else if email, ok := claims["email"].(string); ok {
		st.Subject = email
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		st.ExpiresAt = &t
		st.Expired = now.After(t)
	}
	return st
}
