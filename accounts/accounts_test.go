package accounts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/session"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type fakeBackend struct {
	access      string
	refresh     string
	profileBody string
	logins      int
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/", func(w http.ResponseWriter, r *http.Request) {
		f.logins++
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "asha" || creds.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
			return
		}
		refresh := f.refresh
		if refresh == "" {
			refresh = "refresh-1"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": f.access, "refresh": refresh})
	})
	mux.HandleFunc("GET /api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.access {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, f.profileBody)
	})
	return mux
}

func newClient(t *testing.T, f *fakeBackend, sess apiclient.Session) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL, RefreshPath: "/api/token/refresh/"}, sess)
}

func TestLogin(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	f := &fakeBackend{access: signedToken(t, exp)}
	svc := NewService(newClient(t, f, nil))

	tok, err := svc.Login(context.Background(), Credentials{Username: "asha", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, f.access, tok.AccessToken)
	require.Equal(t, "refresh-1", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestLoginRejected(t *testing.T) {
	f := &fakeBackend{access: "a"}
	svc := NewService(newClient(t, f, nil))

	_, err := svc.Login(context.Background(), Credentials{Username: "asha", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 1, f.logins)
}

func TestLoginValidation(t *testing.T) {
	f := &fakeBackend{}
	svc := NewService(newClient(t, f, nil))

	_, err := svc.Login(context.Background(), Credentials{Username: "asha"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Equal(t, 0, f.logins)
}

func TestProfileShapes(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `{"id":7,"username":"asha","email":"asha@example.com","is_staff":true}`,
		"wrapped": `{"user":{"id":7,"username":"asha","email":"asha@example.com","is_staff":true}}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := &fakeBackend{access: "abc123", profileBody: body}
			sess := session.NewMemoryStore(time.Hour)
			h, err := session.Open(context.Background(), sess, "s1")
			require.NoError(t, err)
			require.NoError(t, h.SetAccessToken(context.Background(), "abc123"))

			p, err := NewService(newClient(t, f, h)).Profile(context.Background())
			require.NoError(t, err)
			require.Equal(t, 7, p.ID)
			require.Equal(t, "asha", p.Username)
			require.True(t, p.IsStaff)
		})
	}
}

func TestSignInAndOut(t *testing.T) {
	ctx := context.Background()
	f := &fakeBackend{access: signedToken(t, time.Now().Add(time.Hour)), profileBody: `{"id":7,"username":"asha","first_name":"Asha","is_staff":false}`}
	store := session.NewMemoryStore(time.Hour)
	h, err := session.Open(ctx, store, "s1")
	require.NoError(t, err)

	svc := NewService(newClient(t, f, h))
	profile, err := svc.SignIn(ctx, h, Credentials{Username: "asha", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "Asha", profile.DisplayName())

	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, f.access, stored.AccessToken)
	require.Equal(t, "refresh-1", stored.RefreshToken)
	require.Equal(t, "asha", stored.Profile.Username)

	require.NoError(t, svc.SignOut(ctx, h))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSignInProfileFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	f := &fakeBackend{access: "abc123"}
	store := session.NewMemoryStore(time.Hour)
	h, err := session.Open(ctx, store, "s1")
	require.NoError(t, err)

	// bound to a different session, so the profile call carries no token
	svc := NewService(newClient(t, f, nil))
	_, err = svc.SignIn(ctx, h, Credentials{Username: "asha", Password: "s3cret"})
	require.Error(t, err)
	require.False(t, h.SignedIn())
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSignInRecordsRefreshExpiry(t *testing.T) {
	ctx := context.Background()
	refreshExp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	f := &fakeBackend{
		access:      signedToken(t, time.Now().Add(5*time.Minute)),
		refresh:     signedToken(t, refreshExp),
		profileBody: `{"id":7,"username":"asha"}`,
	}
	store := session.NewMemoryStore(24 * time.Hour)
	h, err := session.Open(ctx, store, "s1")
	require.NoError(t, err)

	_, err = NewService(newClient(t, f, h)).SignIn(ctx, h, Credentials{Username: "asha", Password: "s3cret"})
	require.NoError(t, err)

	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, refreshExp.Equal(stored.ExpiresAt))

	left, alive := h.Remaining(24 * time.Hour)
	require.True(t, alive)
	require.LessOrEqual(t, left, 30*time.Minute)
}
