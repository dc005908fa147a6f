package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/go-rental-storefront/internal/money"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
	"github.com/jrsteele09/go-rental-storefront/rentals"
	"github.com/jrsteele09/go-rental-storefront/session"
	"github.com/rs/zerolog"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	layoutTemplate      = "layout.html"
	adminLayoutTemplate = "admin_layout.html"
)

// parseTemplate parses one content or layout template with the shared funcs.
func parseTemplate(fsys fs.FS, name string) (*template.Template, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

// loadTemplates parses every embedded template once at startup.
func loadTemplates() (map[string]*template.Template, error) {
	fsys, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, err
	}
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := parseTemplate(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	for _, required := range []string{layoutTemplate, adminLayoutTemplate, errorTemplate} {
		if _, ok := templates[required]; !ok {
			return nil, fmt.Errorf("missing template %s", required)
		}
	}
	return templates, nil
}

var templateFuncs = template.FuncMap{
	"money": func(a money.Amount) string {
		return money.Format(a, "INR")
	},
	"minor": func(minor int64, currency string) string {
		return money.Format(money.FromMinor(minor), currency)
	},
	"date": func(v any) string {
		switch d := v.(type) {
		case rentals.Date:
			if d.IsZero() {
				return ""
			}
			return d.Format("02 Jan 2006")
		case time.Time:
			if d.IsZero() {
				return ""
			}
			return d.Format("02 Jan 2006")
		default:
			return fmt.Sprint(v)
		}
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006 15:04")
	},
	"label": func(s string) string {
		s = strings.ReplaceAll(s, "_", " ")
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"path":   pathFor,
	"has":    slices.Contains[[]string],
	"photos": photosOf,
}

// pageData is handed to the layouts.
type pageData struct {
	AppName string
	Title   string
	Active  string
	Profile *session.Profile
	// SessionEnds is when the signed-in session runs out, zero when unknown.
	SessionEnds time.Time
	Notice      string
	Error       string
	Content     template.HTML
}

// view is handed to content templates. Data carries the page specific values.
type view struct {
	Profile *session.Profile
	Form    any
	Errors  validation.Errors
	Error   string
	Data    any
}

// renderSpec describes one render.
type renderSpec struct {
	status   int
	layout   string
	template string
	title    string
	active   string
	view     view
}

// render executes the content template, then the layout around it. Nothing is
// written until both have succeeded.
func (s *Server) render(w http.ResponseWriter, r *http.Request, p renderSpec) {
	sc := s.scopeFrom(r.Context())
	profile := sc.session.Profile()
	p.view.Profile = profile

	contentTmpl, ok := s.templates[p.template]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("template", p.template).Msg("unknown template")
		http.Error(w, "Failed to load content template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, p.view); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", p.template).Msg("failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layout := p.layout
	if layout == "" {
		layout = layoutTemplate
	}
	data := pageData{
		AppName:     s.config.GetAppName(),
		Title:       p.title,
		Active:      p.active,
		Profile:     profile,
		SessionEnds: sessionEnds(sc, s.config.GetMaxSessionAge()),
		Notice:      r.URL.Query().Get("notice"),
		Error:       r.URL.Query().Get("error"),
		Content:     template.HTML(contentBuf.String()),
	}

	var pageBuf bytes.Buffer
	if err := s.templates[layout].Execute(&pageBuf, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", layout).Msg("failed to render layout")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = pageBuf.WriteTo(w)
}

// sessionEnds is shown to signed-in users only.
func sessionEnds(sc *requestScope, maxAge time.Duration) time.Time {
	if !sc.session.SignedIn() {
		return time.Time{}
	}
	return sc.session.EndsAt(maxAge)
}

// renderPage renders a storefront page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, tmpl, title string, v view) {
	s.render(w, r, renderSpec{template: tmpl, title: title, view: v})
}

// renderAdminPage renders a page with the admin layout
func (s *Server) renderAdminPage(w http.ResponseWriter, r *http.Request, activePage, pageTitle, contentTemplate string, v view) {
	s.render(w, r, renderSpec{layout: adminLayoutTemplate, template: contentTemplate, title: pageTitle, active: activePage, view: v})
}

// renderForm re-renders a form with field messages and a 422 status.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, layout, tmpl, title, active string, v view) {
	s.render(w, r, renderSpec{status: http.StatusUnprocessableEntity, layout: layout, template: tmpl, title: title, active: active, view: v})
}
