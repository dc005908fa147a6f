package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-rental-storefront/session"
)

// sessionCookieName holds only the opaque session id; tokens stay server side.
const sessionCookieName = "storefront_session"

// setSessionCookie names h in the browser. The cookie lives as long as the
// session can: SESSION_MAX_AGE, cut short by the refresh token's expiry.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, h *session.Handle) {
	maxAge := -1
	if left, alive := h.Remaining(s.config.GetMaxSessionAge()); alive {
		maxAge = int(left.Round(time.Second).Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithNotice carries a success message to the next page.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withQuery(path, "notice", notice))
}

// redirectToLogin sends the browser to the login page, remembering where it
// was going. A request already on the login page is never redirected.
func redirectToLogin(w http.ResponseWriter, r *http.Request, errorMsg string) {
	target := RouteLogin
	if next := r.URL.RequestURI(); r.Method == http.MethodGet && safeNext(next) != "" {
		target = withQuery(target, "next", next)
	}
	if errorMsg != "" {
		target = withQuery(target, "error", errorMsg)
	}
	redirectSuccess(w, r, target)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// safeNext returns next when it is a local path other than the login page, and
// "" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return ""
	}
	if u.Path == RouteLogin || u.Path == RouteLogout {
		return ""
	}
	return next
}

// pathFor fills the {id} segment of a route pattern.
func pathFor(pattern string, id int) string {
	return strings.Replace(pattern, "{id}", strconv.Itoa(id), 1)
}

// pathID reads the {id} path value.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
