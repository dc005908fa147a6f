package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-rental-storefront/accounts"
	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/catalog"
	"github.com/jrsteele09/go-rental-storefront/inquiries"
	"github.com/jrsteele09/go-rental-storefront/payments"
	"github.com/jrsteele09/go-rental-storefront/rentals"
	"github.com/jrsteele09/go-rental-storefront/session"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyScope stores the request's *requestScope
const ContextKeyScope ContextKey = "scope"

// requestScope is the browser session of one request and a backend client
// bound to it.
type requestScope struct {
	session *session.Handle
	api     *apiclient.Client
}

func (sc *requestScope) accounts() *accounts.Service { return accounts.NewService(sc.api) }
func (sc *requestScope) catalog() *catalog.Service { return catalog.NewService(sc.api) }
func (sc *requestScope) rentals() *rentals.Service { return rentals.NewService(sc.api) }
func (sc *requestScope) inquiries() *inquiries.Service { return inquiries.NewService(sc.api) }
func (sc *requestScope) payments() *payments.Service { return payments.NewService(sc.api) }

// scopeFrom returns the scope set by SessionMiddleware. Routes registered
// without it get an anonymous scope that is never persisted.
func (s *Server) scopeFrom(ctx context.Context) *requestScope {
	if sc, ok := ctx.Value(ContextKeyScope).(*requestScope); ok {
		return sc
	}
	h, _ := session.Open(ctx, s.sessions, "")
	return &requestScope{session: h, api: s.api.WithSession(h)}
}

// SessionMiddleware loads the session named by the cookie. A store failure is
// logged and the request continues signed out.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id = cookie.Value
		}

		h, err := session.Open(r.Context(), s.sessions, id)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load session")
			h, _ = session.Open(r.Context(), s.sessions, "")
		}

		sc := &requestScope{session: h, api: s.api.WithSession(h)}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyScope, sc)))
	}
}

// RequireSignIn redirects signed-out browsers to the login page.
func (s *Server) RequireSignIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.scopeFrom(r.Context()).session.SignedIn() {
			redirectToLogin(w, r, "Please sign in to continue.")
			return
		}
		next(w, r)
	}
}

// RequireStaff rejects signed-in users whose profile is not staff.
func (s *Server) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scopeFrom(r.Context())
		if !sc.session.IsStaff() {
			zerolog.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("non-staff access to admin console")
			s.renderError(w, r, http.StatusForbidden, msgForbidden)
			return
		}
		next(w, r)
	}
}
