package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
	"github.com/rs/zerolog"
)

const errorTemplate = "error.html"

const (
	msgForbidden      = "You do not have permission to do that."
	msgNotFound       = "We could not find what you were looking for."
	msgServer         = "Something went wrong on our side. Please try again."
	msgNetwork        = "We could not reach the server. Check your connection and try again."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgUnknown        = "Something went wrong. Please try again."
	msgFixFields      = "Please correct the highlighted fields."
)

// userMessage maps a failure to text that is safe to show. Backend bodies are
// never shown for anything but validation failures.
func userMessage(err error) string {
	switch apiclient.KindOf(err) {
	case apiclient.KindValidation:
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return msgFixFields
	case apiclient.KindForbidden:
		return msgForbidden
	case apiclient.KindNotFound:
		return msgNotFound
	case apiclient.KindServer:
		return msgServer
	case apiclient.KindNetwork:
		return msgNetwork
	case apiclient.KindSessionExpired, apiclient.KindUnauthenticated:
		return msgSessionExpired
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidID), errors.Is(err, apperrors.ErrNotFound):
		return msgNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		return msgFixFields
	}
	return msgUnknown
}

func statusFor(err error) int {
	switch apiclient.KindOf(err) {
	case apiclient.KindValidation:
		return http.StatusUnprocessableEntity
	case apiclient.KindForbidden:
		return http.StatusForbidden
	case apiclient.KindNotFound:
		return http.StatusNotFound
	case apiclient.KindServer, apiclient.KindNetwork:
		return http.StatusBadGateway
	case apiclient.KindSessionExpired, apiclient.KindUnauthenticated:
		return http.StatusUnauthorized
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidID), errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// formFailure reports whether err should re-render the submitted form, and
// with which field messages and summary.
func formFailure(err error) (validation.Errors, string, bool) {
	if fields := validation.FieldErrors(err); fields != nil {
		return fields, msgFixFields, true
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Kind() == apiclient.KindValidation {
		msg := apiErr.Message
		if msg == "" {
			msg = msgFixFields
		}
		return validation.Errors(apiErr.Fields), msg, true
	}
	return nil, "", false
}

// handleError presents a failed backend call. An expired session ends the
// browser session and goes to the login page.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrSessionExpired) || apiclient.KindOf(err) == apiclient.KindUnauthenticated {
		s.expireSession(w, r)
		return
	}

	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= 500 {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request refused")
	}
	s.renderError(w, r, status, userMessage(err))
}

// expireSession drops the browser's session and redirects to the login page
// unless the request is already there.
func (s *Server) expireSession(w http.ResponseWriter, r *http.Request) {
	s.metrics.sessionExpired()
	if err := s.scopeFrom(r.Context()).session.Clear(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to clear session")
	}
	s.clearSessionCookie(w, r)

	if r.URL.Path == RouteLogin {
		s.renderLogin(w, r, http.StatusUnauthorized, loginForm{Next: r.URL.Query().Get("next")}, nil, msgSessionExpired)
		return
	}
	redirectToLogin(w, r, msgSessionExpired)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	layout := layoutTemplate
	if strings.HasPrefix(r.URL.Path, RouteAdminDashboard) && s.scopeFrom(r.Context()).session.IsStaff() {
		layout = adminLayoutTemplate
	}
	s.render(w, r, renderSpec{
		status:   status,
		layout:   layout,
		template: errorTemplate,
		title:    http.StatusText(status),
		view:     view{Error: msg, Data: status},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// actionFailed reports a failed admin action on the page it came from.
func (s *Server) actionFailed(w http.ResponseWriter, r *http.Request, back string, err error) {
	if errors.Is(err, apiclient.ErrSessionExpired) || apiclient.KindOf(err) == apiclient.KindUnauthenticated {
		s.expireSession(w, r)
		return
	}
	zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("action failed")
	redirectWithError(w, r, back, userMessage(err))
}
