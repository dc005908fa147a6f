package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.True(t, exp.Equal(TokenExpiry(signedToken(t, jwt.MapClaims{"user_id": 7, "exp": exp.Unix()}))))
	require.True(t, TokenExpiry("").IsZero())
	require.True(t, TokenExpiry("not-a-jwt").IsZero())
	require.True(t, TokenExpiry(signedToken(t, jwt.MapClaims{"sub": "7"})).IsZero())
}

func TestStateRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		state     State
		maxAge    time.Duration
		wantLeft  time.Duration
		wantAlive bool
	}{
		{"max age from creation", State{CreatedAt: now.Add(-15 * time.Minute)}, time.Hour, 45 * time.Minute, true},
		{"unsaved session gets full max age", State{}, time.Hour, time.Hour, true},
		{"refresh expiry comes first", State{CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}, time.Hour, 10 * time.Minute, true},
		{"max age comes first", State{CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}, time.Hour, time.Hour, true},
		{"refresh expiry without max age", State{CreatedAt: now, ExpiresAt: now.Add(time.Minute)}, 0, time.Minute, true},
		{"no end", State{CreatedAt: now.Add(-1000 * time.Hour)}, 0, 0, true},
		{"refresh token expired", State{CreatedAt: now, ExpiresAt: now.Add(-time.Second)}, time.Hour, -time.Second, false},
		{"past max age", State{CreatedAt: now.Add(-2 * time.Hour)}, time.Hour, -time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, alive := tt.state.Remaining(now, tt.maxAge)
			require.Equal(t, tt.wantLeft, left)
			require.Equal(t, tt.wantAlive, alive)
		})
	}
}

func TestHandleTracksRefreshExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(24 * time.Hour)
	store.now = func() time.Time { return now }

	h, err := Open(ctx, store, "s1")
	require.NoError(t, err)
	h.now = func() time.Time { return now }

	first := now.Add(time.Hour)
	require.NoError(t, h.Login(ctx, &oauth2.Token{
		AccessToken:  "a1",
		RefreshToken: signedToken(t, jwt.MapClaims{"exp": first.Unix()}),
	}, nil))
	require.True(t, first.Equal(h.EndsAt(24*time.Hour)))
	require.True(t, now.Add(30*time.Minute).Equal(h.EndsAt(30*time.Minute)))
	left, alive := h.Remaining(24 * time.Hour)
	require.True(t, alive)
	require.Equal(t, time.Hour, left)

	// a rotated refresh token moves the end with it
	rotated := now.Add(3 * time.Hour)
	require.NoError(t, h.SetRefreshToken(ctx, signedToken(t, jwt.MapClaims{"exp": rotated.Unix()})))
	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, rotated.Equal(stored.ExpiresAt))

	// an access token refresh leaves it alone
	require.NoError(t, h.SetAccessToken(ctx, "a2"))
	require.True(t, rotated.Equal(h.EndsAt(24*time.Hour)))

	// once the refresh token has run out the store drops the session
	now = rotated.Add(time.Second)
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
}
