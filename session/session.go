package session

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
)

// ErrNotFound is returned by a Store when the id is unknown or expired.
var ErrNotFound = apperrors.ErrSessionNotFound

// Profile is the signed-in user as reported by the backend.
type Profile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

// DisplayName prefers the full name and falls back to the username.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Username
	}
}

// State is everything kept for one browser session. Tokens are never sent to
// the browser; only the session id travels in a cookie.
type State struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Profile      *Profile  `json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// ExpiresAt is the refresh token's exp claim. Past it no refresh can
	// succeed, so the session ends there even when maxAge has time left.
	ExpiresAt time.Time `json:"expires_at"`
}

func (s State) SignedIn() bool {
	return s.AccessToken != "" || s.RefreshToken != ""
}

// EndsAt returns when the session ends: maxAge after CreatedAt, or ExpiresAt
// when that comes first. The zero time means it has no end. A session not yet
// saved counts its maxAge from now.
func (s State) EndsAt(now time.Time, maxAge time.Duration) time.Time {
	var end time.Time
	if maxAge > 0 {
		created := s.CreatedAt
		if created.IsZero() {
			created = now
		}
		end = created.Add(maxAge)
	}
	if !s.ExpiresAt.IsZero() && (end.IsZero() || s.ExpiresAt.Before(end)) {
		end = s.ExpiresAt
	}
	return end
}

// Remaining returns the time left before EndsAt. alive with a zero left means
// the session has no end.
func (s State) Remaining(now time.Time, maxAge time.Duration) (left time.Duration, alive bool) {
	end := s.EndsAt(now, maxAge)
	if end.IsZero() {
		return 0, true
	}
	left = end.Sub(now)
	return left, left > 0
}

type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Upsert(ctx context.Context, id string, state State) error
	Delete(ctx context.Context, id string) error
}
