package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestChainMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}
	h := ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, tag("first"), tag("second"))

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestIDMiddleware(t *testing.T) {
	env := newTestEnv(t)
	var seen string
	h := env.srv.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(headerRequestID)
		require.NotNil(t, zerolog.Ctx(r.Context()))
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, id)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, id, rec.Header().Get(headerRequestID))
		require.Equal(t, id, seen)
	})

	t.Run("replaces an invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, "<script>")
		rec := httptest.NewRecorder()
		h(rec, req)
		got := rec.Header().Get(headerRequestID)
		_, err := uuid.Parse(got)
		require.NoError(t, err)
	})
}

func TestRecoverMiddleware(t *testing.T) {
	env := newTestEnv(t)
	h := env.srv.RecoverMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	abort := env.srv.RecoverMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestPageHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/contact")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rec.Header().Get(headerRequestID))
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestWWWRedirect(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/properties?q=goa", nil)
	req.Host = "www.example.com"

	rec := env.serve(req)

	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "https://example.com/properties?q=goa", rec.Header().Get("Location"))
}

func TestCorsPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/payments/verify", nil)
	req.Header.Set("Origin", "http://localhost:8080")

	rec := env.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRedirectSuccess(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		redirectSuccess(rec, httptest.NewRequest(http.MethodPost, "/x", nil), "/done")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/done", rec.Header().Get("Location"))
	})

	t.Run("htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		redirectSuccess(rec, req, "/done")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "/done", rec.Header().Get("HX-Redirect"))
	})
}

func TestWithQuery(t *testing.T) {
	require.Equal(t, "/a?notice=Saved+it.", withQuery("/a", "notice", "Saved it."))
	require.Equal(t, "/a?status=new&notice=ok", withQuery("/a?status=new", "notice", "ok"))
}
