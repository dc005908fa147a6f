package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-rental-storefront/accounts"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
	"github.com/jrsteele09/go-rental-storefront/session"
	"github.com/rs/zerolog"
)

const (
	loginTemplate         = "login.html"
	msgInvalidCredentials = "Invalid username or password."
	msgSignedOut          = "You have been signed out."
)

type loginForm struct {
	Username string
	Next     string
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, form loginForm, errs validation.Errors, msg string) {
	s.render(w, r, renderSpec{status: status, template: loginTemplate, title: "Sign in", view: view{Form: form, Errors: errs, Error: msg}})
}

// landingPath is where a fresh sign-in goes when no next page was asked for.
func landingPath(p *session.Profile) string {
	if p != nil && p.IsStaff {
		return RouteAdminDashboard
	}
	return "/"
}

// LoginPageHandler renders the login page
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scopeFrom(r.Context())
		next := safeNext(r.URL.Query().Get("next"))
		if sc.session.SignedIn() {
			if next == "" {
				next = landingPath(sc.session.Profile())
			}
			redirectSuccess(w, r, next)
			return
		}
		s.renderLogin(w, r, http.StatusOK, loginForm{Next: next}, nil, "")
	}
}

// LoginSubmissionHandler exchanges credentials for a token pair and starts a
// new session. The session id is always fresh so an id planted before sign-in
// is never promoted.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseForm(w, r)
		if err != nil {
			s.renderLogin(w, r, http.StatusBadRequest, loginForm{}, nil, msgFixFields)
			return
		}
		form := loginForm{Username: f.text("username"), Next: safeNext(f.text("next"))}
		creds := accounts.Credentials{Username: form.Username, Password: f.values.Get("password")}

		sc := s.scopeFrom(r.Context())
		if sc.session.SignedIn() {
			if err := sc.session.Clear(r.Context()); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to clear previous session")
			}
		}

		h, err := session.Open(r.Context(), s.sessions, "")
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		profile, err := accounts.NewService(s.api.WithSession(h)).SignIn(r.Context(), h, creds)
		if err != nil {
			switch fields, msg, ok := formFailure(err); {
			case errors.Is(err, accounts.ErrInvalidCredentials):
				s.renderLogin(w, r, http.StatusUnauthorized, form, nil, msgInvalidCredentials)
			case ok:
				s.renderLogin(w, r, http.StatusUnprocessableEntity, form, fields, msg)
			default:
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign in failed")
				s.renderLogin(w, r, statusFor(err), form, nil, userMessage(err))
			}
			return
		}

		s.setSessionCookie(w, r, h)
		zerolog.Ctx(r.Context()).Info().Str("username", profile.Username).Bool("staff", profile.IsStaff).Msg("signed in")

		next := form.Next
		if next == "" {
			next = landingPath(profile)
		}
		redirectSuccess(w, r, next)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scopeFrom(r.Context())
		if err := sc.accounts().SignOut(r.Context(), sc.session); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to clear session on logout")
		}
		s.clearSessionCookie(w, r)
		redirectWithNotice(w, r, "/", msgSignedOut)
	}
}
