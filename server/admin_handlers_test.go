package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, path string, fields map[string]string, photos map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range photos {
		part, err := mw.CreateFormFile(photoField, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /api/properties/", jsonReply(http.StatusOK, `{"count":12,"results":[]}`))
	env.backend.handle("GET /api/furniture/", jsonReply(http.StatusOK, `{"count":30,"results":[]}`))
	env.backend.handle("GET /api/rentals/", jsonReply(http.StatusOK, `{"rentals":[{"id":1},{"id":2}]}`))
	env.backend.handle("GET /api/contact/", jsonReply(http.StatusOK, `[{"id":1},{"id":2},{"id":3}]`))
	env.backend.handle("GET /api/bookings/", jsonReply(http.StatusOK, `{"bookings":[{"id":1}]}`))
	env.backend.handle("GET /api/rentals/dues/", jsonReply(http.StatusOK, `[
		{"customer_name":"Small","total_due":"500.00","overdue_count":0},
		{"customer_name":"Large","total_due":"9000.00","overdue_count":2}
	]`))
	cookie := env.signIn(t, staffProfile())

	rec := env.get("/admin", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>12</strong> properties")
	assert.Contains(t, body, "<strong>30</strong> furniture items")
	assert.Contains(t, body, "<strong>2</strong> active rentals")
	assert.Contains(t, body, "<strong>3</strong> new inquiries")
	assert.Contains(t, body, "<strong>1</strong> new booking requests")
	assert.Contains(t, body, "₹9,500.00 outstanding, 2 payments overdue")
	assert.Less(t, strings.Index(body, "Large"), strings.Index(body, "Small"))

	for _, call := range []string{"GET /api/properties/", "GET /api/furniture/", "GET /api/rentals/", "GET /api/contact/", "GET /api/bookings/", "GET /api/rentals/dues/"} {
		assert.Equal(t, 1, env.backend.callCount(call), call)
	}
}

func TestAdminDashboard_OneFailureFailsThePage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /api/properties/", jsonReply(http.StatusOK, `[]`))
	env.backend.handle("GET /api/furniture/", jsonReply(http.StatusOK, `[]`))
	env.backend.handle("GET /api/rentals/", jsonReply(http.StatusOK, `[]`))
	env.backend.handle("GET /api/contact/", jsonReply(http.StatusOK, `[]`))
	env.backend.handle("GET /api/bookings/", jsonReply(http.StatusOK, `[]`))
	env.backend.handle("GET /api/rentals/dues/", jsonReply(http.StatusForbidden, `{"detail":"Staff only"}`))
	cookie := env.signIn(t, staffProfile())

	rec := env.get("/admin", cookie)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), msgForbidden)
}

func TestAdminPropertyCreate_SendsMultipart(t *testing.T) {
	env := newTestEnv(t)
	type upload struct {
		contentType string
		fields      url.Values
		files       map[string]string
		auth        string
	}
	uploads := make(chan upload, 1)
	env.backend.handle("POST /api/properties/", func(w http.ResponseWriter, r *http.Request) {
		u := upload{contentType: r.Header.Get("Content-Type"), auth: r.Header.Get("Authorization"), files: map[string]string{}}
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			u.fields = url.Values(r.MultipartForm.Value)
			for _, fh := range r.MultipartForm.File["images"] {
				u.files[fh.Filename] = fh.Header.Get("Content-Type")
			}
		}
		uploads <- u
		jsonReply(http.StatusCreated, `{"id":7,"title":"Sea View Flat"}`)(w, r)
	})
	cookie := env.signIn(t, staffProfile())

	req := multipartRequest(t, "/admin/properties", map[string]string{
		"title":         "Sea View Flat",
		"location":      "Goa",
		"property_type": "apartment",
		"listing_type":  "rent",
		"price":         "25,000",
		"bedrooms":      "2",
		"bathrooms":     "1",
		"area_sqft":     "900",
		"is_available":  "on",
	}, map[string][]byte{"front.png": pngHeader})
	rec := env.serve(req, cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/admin/properties", loc.Path)
	require.Equal(t, "Saved Sea View Flat.", loc.Query().Get("notice"))

	u := <-uploads
	require.True(t, strings.HasPrefix(u.contentType, "multipart/form-data; boundary="), u.contentType)
	require.Equal(t, "Bearer access-1", u.auth)
	require.Equal(t, "Sea View Flat", u.fields.Get("title"))
	require.Equal(t, "25000", u.fields.Get("price"))
	require.Equal(t, "true", u.fields.Get("is_available"))
	require.Equal(t, map[string]string{"front.png": "image/png"}, u.files)
}

func TestAdminPropertyCreate_InvalidFormIsNotSent(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, staffProfile())

	req := multipartRequest(t, "/admin/properties", map[string]string{
		"title":         "",
		"location":      "Goa",
		"property_type": "apartment",
		"listing_type":  "lease",
		"price":         "lots",
	}, map[string][]byte{"notes.txt": []byte("plain text, not a photo")})
	rec := env.serve(req, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "must be a number")
	require.Zero(t, env.backend.totalCalls())

	req = multipartRequest(t, "/admin/properties", map[string]string{
		"location":      "Goa",
		"property_type": "apartment",
		"listing_type":  "lease",
		"price":         "100",
	}, map[string][]byte{"notes.txt": []byte("plain text, not a photo")})
	rec = env.serve(req, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "is required")
	require.Contains(t, body, "must be one of: rent, sale")
	require.Contains(t, body, `value="Goa"`)
	require.Zero(t, env.backend.totalCalls())

	req = multipartRequest(t, "/admin/properties", map[string]string{
		"title":         "Sea View Flat",
		"location":      "Goa",
		"property_type": "apartment",
		"listing_type":  "rent",
		"price":         "100",
	}, map[string][]byte{"notes.txt": []byte("plain text, not a photo")})
	rec = env.serve(req, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "notes.txt is not an image")
	require.Zero(t, env.backend.totalCalls())
}

func TestAdminPropertyUpdate_BackendFieldErrors(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("PATCH /api/properties/7/", jsonReply(http.StatusBadRequest, `{"title":["property with this title already exists."]}`))
	cookie := env.signIn(t, staffProfile())

	req := multipartRequest(t, "/admin/properties/7", map[string]string{
		"title":         "Sea View Flat",
		"location":      "Goa",
		"property_type": "apartment",
		"listing_type":  "rent",
		"price":         "25000",
	}, nil)
	rec := env.serve(req, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "property with this title already exists.")
	require.Contains(t, rec.Body.String(), `action="/admin/properties/7"`)
}

func TestAdminPropertyDelete(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("DELETE /api/properties/7/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	env.backend.handle("DELETE /api/properties/8/", jsonReply(http.StatusNotFound, `{"detail":"Not found."}`))
	cookie := env.signIn(t, staffProfile())

	rec := env.postForm("/admin/properties/7/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ := url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "/admin/properties", loc.Path)
	require.NotEmpty(t, loc.Query().Get("notice"))

	rec = env.postForm("/admin/properties/8/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ = url.Parse(rec.Header().Get("Location"))
	require.Equal(t, msgNotFound, loc.Query().Get("error"))
}

func TestAdminInquiryStatus(t *testing.T) {
	env := newTestEnv(t)
	patches := make(chan string, 1)
	env.backend.handle("PATCH /api/contact/4/", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		patches <- string(b)
		jsonReply(http.StatusOK, `{"id":4,"status":"contacted"}`)(w, r)
	})
	cookie := env.signIn(t, staffProfile())

	rec := env.postForm("/admin/inquiries/4/status", url.Values{"status": {"contacted"}, "filter": {"new"}}, cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/admin/inquiries", loc.Path)
	require.Equal(t, "new", loc.Query().Get("status"))
	require.JSONEq(t, `{"status":"contacted"}`, <-patches)

	rec = env.postForm("/admin/bookings/4/status", url.Values{"status": {"archived"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ = url.Parse(rec.Header().Get("Location"))
	require.Equal(t, msgFixFields, loc.Query().Get("error"))
	require.Zero(t, env.backend.callCount("PATCH /api/bookings/4/"))
}

func TestAdminPaymentMark(t *testing.T) {
	env := newTestEnv(t)
	bodies := make(chan map[string]string, 2)
	env.backend.handle("PATCH /api/rental-payments/5/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		jsonReply(http.StatusOK, `{"id":5,"status":"paid"}`)(w, r)
	})
	cookie := env.signIn(t, staffProfile())

	rec := env.postForm("/admin/payments/5/mark", url.Values{"rental": {"2"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ := url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "/admin/rentals/2", loc.Path)
	require.Equal(t, "paid", (<-bodies)["status"])

	rec = env.postForm("/admin/payments/5/mark", url.Values{"status": {"pending"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ = url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "/admin/dues", loc.Path)
	require.Equal(t, "pending", (<-bodies)["status"])
}

func TestAdminRental_ShowsPaymentsInDueOrder(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /api/rentals/2/", jsonReply(http.StatusOK, `{"id":2,"customer_name":"Asha","item_title":"Sea View Flat","monthly_rent":"25000.00","start_date":"2026-01-01","status":"active"}`))
	env.backend.handle("GET /api/rental-payments/", jsonReply(http.StatusOK, `[
		{"id":11,"rental":2,"due_date":"2026-03-01","amount":"25000.00","status":"pending"},
		{"id":10,"rental":2,"due_date":"2026-02-01","amount":"25000.00","status":"paid","paid_on":"2026-02-03"}
	]`))
	cookie := env.signIn(t, staffProfile())

	rec := env.get("/admin/rentals/2", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Asha")
	require.Less(t, strings.Index(body, "01 Feb 2026"), strings.Index(body, "01 Mar 2026"))
}

func TestAdminRentalGenerate(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("POST /api/rentals/2/generate-payments/", jsonReply(http.StatusCreated, `{"payments":[{"id":1},{"id":2},{"id":3}]}`))
	cookie := env.signIn(t, staffProfile())

	rec := env.postForm("/admin/rentals/2/generate-payments", nil, cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ := url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "/admin/rentals/2", loc.Path)
	require.Equal(t, "Generated 3 payments.", loc.Query().Get("notice"))
}
