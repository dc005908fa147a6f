package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-rental-storefront/inquiries"
	"github.com/jrsteele09/go-rental-storefront/session"
)

const (
	msgBookingSent = "Thanks! We have received your request and will be in touch shortly."
	msgContactSent = "Thanks for getting in touch. We will reply as soon as we can."
)

// BookGetHandler shows the booking form for the listing named in the query.
func (s *Server) BookGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		form := inquiries.BookingRequest{
			ItemType:    q.Get("item_type"),
			RequestType: q.Get("request_type"),
		}
		form.ItemID, _ = strconv.Atoi(q.Get("item_id"))
		if form.RequestType == "" {
			form.RequestType = "rent"
		}
		prefillContact(s.scopeFrom(r.Context()).session.Profile(), &form.Name, &form.Email)

		s.renderPage(w, r, "book.html", "Book", view{Form: form})
	}
}

func (s *Server) BookPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseForm(w, r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, msgFixFields)
			return
		}
		form := inquiries.BookingRequest{
			ItemType:       f.text("item_type"),
			ItemID:         f.number("item_id"),
			RequestType:    f.text("request_type"),
			Name:           f.text("name"),
			Email:          f.text("email"),
			Phone:          f.text("phone"),
			StartDate:      f.text("start_date"),
			DurationMonths: f.number("duration_months"),
			Message:        f.text("message"),
		}
		if err := f.err(); err != nil {
			s.renderForm(w, r, layoutTemplate, "book.html", "Book", "", view{Form: form, Errors: f.errs, Error: msgFixFields})
			return
		}

		if _, err := s.scopeFrom(r.Context()).inquiries().SubmitBooking(r.Context(), form); err != nil {
			if fields, msg, ok := formFailure(err); ok {
				s.renderForm(w, r, layoutTemplate, "book.html", "Book", "", view{Form: form, Errors: fields, Error: msg})
				return
			}
			s.handleError(w, r, err)
			return
		}
		redirectWithNotice(w, r, listingPath(form.ItemType, form.ItemID), msgBookingSent)
	}
}

func (s *Server) ContactGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := inquiries.ContactInquiry{Subject: r.URL.Query().Get("subject")}
		prefillContact(s.scopeFrom(r.Context()).session.Profile(), &form.Name, &form.Email)
		s.renderPage(w, r, "contact.html", "Contact us", view{Form: form})
	}
}

func (s *Server) ContactPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseForm(w, r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, msgFixFields)
			return
		}
		form := inquiries.ContactInquiry{
			Name:    f.text("name"),
			Email:   f.text("email"),
			Phone:   f.text("phone"),
			Subject: f.text("subject"),
			Message: f.text("message"),
		}

		if _, err := s.scopeFrom(r.Context()).inquiries().Submit(r.Context(), form); err != nil {
			if fields, msg, ok := formFailure(err); ok {
				s.renderForm(w, r, layoutTemplate, "contact.html", "Contact us", "", view{Form: form, Errors: fields, Error: msg})
				return
			}
			s.handleError(w, r, err)
			return
		}
		redirectWithNotice(w, r, RouteContact, msgContactSent)
	}
}

func prefillContact(p *session.Profile, name, email *string) {
	if p == nil {
		return
	}
	if *name == "" {
		*name = p.DisplayName()
	}
	if *email == "" {
		*email = p.Email
	}
}

// listingPath is the storefront page of a listing, or the home page.
func listingPath(itemType string, id int) string {
	if id <= 0 {
		return "/"
	}
	switch itemType {
	case "property":
		return pathFor(RouteProperty, id)
	case "furniture":
		return pathFor(RouteFurniture, id)
	}
	return "/"
}
