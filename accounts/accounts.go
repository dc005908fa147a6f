package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
	"github.com/jrsteele09/go-rental-storefront/session"
	"golang.org/x/oauth2"
)

const (
	tokenPath   = "/api/token/"
	profilePath = "/api/auth/profile/"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Credentials struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Access      string `json:"access"`
	AccessToken string `json:"access_token"`
	Refresh     string `json:"refresh"`
}

// Service talks to the backend's auth endpoints.
type Service struct {
	api apiclient.Doer
}

func NewService(api apiclient.Doer) *Service {
	return &Service{api: api}
}

// Login exchanges credentials for a token pair.
func (s *Service) Login(ctx context.Context, creds Credentials) (*oauth2.Token, error) {
	if err := validation.Struct(creds); err != nil {
		return nil, err
	}

	var resp tokenResponse
	err := s.api.Do(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        tokenPath,
		Body:        creds,
		SkipRefresh: true,
	}, &resp)
	if err != nil {
		if apiclient.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("[accounts Login] %w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("[accounts Login] %w", err)
	}

	access := resp.Access
	if access == "" {
		access = resp.AccessToken
	}
	if access == "" {
		return nil, errors.New("[accounts Login] response carried no access token")
	}
	return NewToken(access, resp.Refresh), nil
}

// Profile fetches the signed-in user. The backend returns either the profile
// itself or the profile under "user".
func (s *Service) Profile(ctx context.Context) (*session.Profile, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: profilePath}, &raw); err != nil {
		return nil, fmt.Errorf("[accounts Profile] %w", err)
	}

	var wrapped struct {
		User *session.Profile `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}

	var profile session.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("[accounts Profile] failed to decode profile: %w", err)
	}
	return &profile, nil
}

// SignIn logs in, stores the tokens on h and caches the profile. api must be
// bound to h so the profile request carries the new token.
func (s *Service) SignIn(ctx context.Context, h *session.Handle, creds Credentials) (*session.Profile, error) {
	token, err := s.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := h.Login(ctx, token, nil); err != nil {
		return nil, err
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		_ = h.Clear(ctx)
		return nil, err
	}
	if err := h.SetProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SignOut forgets the session's tokens and profile.
func (s *Service) SignOut(ctx context.Context, h *session.Handle) error {
	return h.Clear(ctx)
}

// NewToken wraps a token pair returned by the backend.
func NewToken(access, refresh string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
}
