package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const idBytes = 32

// NewID returns a random url-safe session id.
func NewID() string {
	b := make([]byte, idBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Handle is one browser session bound to a Store. It satisfies
// apiclient.Session, so token writes made during a refresh go straight to the
// store. A Handle is safe for concurrent use.
type Handle struct {
	store Store
	id    string
	now   func() time.Time

	mu    sync.RWMutex
	state State
}

// Open loads the session with the given id. An unknown or expired id yields an
// anonymous handle under the same id.
func Open(ctx context.Context, store Store, id string) (*Handle, error) {
	h := &Handle{store: store, id: id, now: time.Now}
	if id == "" {
		h.id = NewID()
		return h, nil
	}

	state, err := store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("[session Open] %w", err)
	}
	h.state = state
	return h, nil
}

func (h *Handle) ID() string {
	return h.id
}

func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *Handle) SignedIn() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.SignedIn()
}

// Profile returns a copy of the cached profile, or nil when signed out.
func (h *Handle) Profile() *Profile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state.Profile == nil {
		return nil
	}
	p := *h.state.Profile
	return &p
}

func (h *Handle) IsStaff() bool {
	p := h.Profile()
	return p != nil && p.IsStaff
}

func (h *Handle) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.AccessToken
}

func (h *Handle) RefreshToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.RefreshToken
}

// EndsAt is when the session ends under maxAge; see State.EndsAt.
func (h *Handle) EndsAt(maxAge time.Duration) time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.EndsAt(h.now(), maxAge)
}

// Remaining reports how long the session has left under maxAge; see
// State.Remaining.
func (h *Handle) Remaining(maxAge time.Duration) (time.Duration, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Remaining(h.now(), maxAge)
}

func (h *Handle) SetAccessToken(ctx context.Context, token string) error {
	return h.update(ctx, func(s *State) { s.AccessToken = token })
}

// SetRefreshToken stores a rotated refresh token and moves the session end to
// its expiry.
func (h *Handle) SetRefreshToken(ctx context.Context, token string) error {
	return h.update(ctx, func(s *State) {
		s.RefreshToken = token
		s.ExpiresAt = TokenExpiry(token)
	})
}

func (h *Handle) SetProfile(ctx context.Context, profile *Profile) error {
	return h.update(ctx, func(s *State) { s.Profile = profile })
}

// Login replaces whatever the session held with a fresh signed-in state.
func (h *Handle) Login(ctx context.Context, token *oauth2.Token, profile *Profile) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("[session Login] access token is required")
	}

	now := h.now()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = State{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    TokenExpiry(token.RefreshToken),
	}
	if err := h.store.Upsert(ctx, h.id, h.state); err != nil {
		return fmt.Errorf("[session Login] %w", err)
	}
	return nil
}

// Clear drops the tokens and the cached profile and removes the stored session.
func (h *Handle) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = State{}
	if err := h.store.Delete(ctx, h.id); err != nil {
		return fmt.Errorf("[session Clear] %w", err)
	}
	return nil
}

func (h *Handle) update(ctx context.Context, fn func(*State)) error {
	now := h.now()
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.state)
	if h.state.CreatedAt.IsZero() {
		h.state.CreatedAt = now
	}
	h.state.UpdatedAt = now
	if err := h.store.Upsert(ctx, h.id, h.state); err != nil {
		return fmt.Errorf("[session update] %w", err)
	}
	return nil
}
