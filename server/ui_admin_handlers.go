package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/jrsteele09/go-rental-storefront/catalog"
	"github.com/jrsteele09/go-rental-storefront/inquiries"
	"github.com/jrsteele09/go-rental-storefront/internal/money"
	"github.com/jrsteele09/go-rental-storefront/rentals"
	"golang.org/x/sync/errgroup"
)

type dashboardView struct {
	Properties    int
	Furniture     int
	ActiveRentals int
	NewInquiries  int
	NewBookings   int
	Dues          []rentals.CustomerDues
	TotalDue      money.Amount
	OverdueCount  int
}

// AdminDashboardHandler shows listing, rental and inquiry counts and the dues
// summary. The backend calls run concurrently.
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scopeFrom(r.Context())
		var v dashboardView

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			page, err := sc.catalog().ListProperties(ctx, catalog.Filter{})
			v.Properties = page.Count
			return err
		})
		g.Go(func() error {
			page, err := sc.catalog().ListFurniture(ctx, catalog.Filter{})
			v.Furniture = page.Count
			return err
		})
		g.Go(func() error {
			page, err := sc.rentals().ListRentals(ctx, rentals.StatusActive)
			v.ActiveRentals = page.Count
			return err
		})
		g.Go(func() error {
			page, err := sc.inquiries().List(ctx, inquiries.StatusNew)
			v.NewInquiries = page.Count
			return err
		})
		g.Go(func() error {
			page, err := sc.inquiries().ListBookings(ctx, inquiries.StatusNew)
			v.NewBookings = page.Count
			return err
		})
		g.Go(func() error {
			dues, err := sc.rentals().Dues(ctx)
			v.Dues = dues
			return err
		})
		if err := g.Wait(); err != nil {
			s.handleError(w, r, err)
			return
		}

		for _, d := range v.Dues {
			v.TotalDue += d.TotalDue
			v.OverdueCount += d.OverdueCount
		}
		slices.SortFunc(v.Dues, func(a, b rentals.CustomerDues) int {
			switch {
			case a.TotalDue > b.TotalDue:
				return -1
			case a.TotalDue < b.TotalDue:
				return 1
			}
			return 0
		})
		v.Dues = firstN(v.Dues, 5)

		s.renderAdminPage(w, r, "dashboard", "Dashboard", "admin_dashboard.html", view{Data: v})
	}
}

func (s *Server) AdminDuesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dues, err := s.scopeFrom(r.Context()).rentals().Dues(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		var total money.Amount
		for _, d := range dues {
			total += d.TotalDue
		}
		s.renderAdminPage(w, r, "dues", "Dues", "admin_dues.html", view{Data: map[string]any{
			"Dues":  dues,
			"Total": total,
		}})
	}
}

// AdminInquiriesHandler lists contact inquiries and booking requests, both
// filtered by the same follow-up status.
func (s *Server) AdminInquiriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scopeFrom(r.Context())
		status := r.URL.Query().Get("status")
		if !slices.Contains(inquiries.Statuses, status) {
			status = ""
		}

		var (
			contact  []inquiries.ContactInquiry
			bookings []inquiries.BookingRequest
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			page, err := sc.inquiries().List(ctx, status)
			contact = page.Items
			return err
		})
		g.Go(func() error {
			page, err := sc.inquiries().ListBookings(ctx, status)
			bookings = page.Items
			return err
		})
		if err := g.Wait(); err != nil {
			s.handleError(w, r, err)
			return
		}

		s.renderAdminPage(w, r, "inquiries", "Inquiries", "admin_inquiries.html", view{Data: map[string]any{
			"Status":    status,
			"Statuses":  inquiries.Statuses,
			"Inquiries": contact,
			"Bookings":  bookings,
		}})
	}
}

func (s *Server) AdminInquiryStatusHandler() http.HandlerFunc {
	return s.followUpStatusHandler((*inquiries.Service).UpdateStatus)
}

func (s *Server) AdminBookingStatusHandler() http.HandlerFunc {
	return s.followUpStatusHandler((*inquiries.Service).UpdateBookingStatus)
}

func (s *Server) followUpStatusHandler(update func(*inquiries.Service, context.Context, int, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		f, err := parseForm(w, r)
		if err != nil {
			redirectWithError(w, r, RouteAdminInquiries, msgFixFields)
			return
		}
		if err := update(s.scopeFrom(r.Context()).inquiries(), r.Context(), id, f.text("status")); err != nil {
			s.actionFailed(w, r, RouteAdminInquiries, err)
			return
		}
		back := RouteAdminInquiries
		if filter := f.text("filter"); filter != "" {
			back = withQuery(back, "status", filter)
		}
		redirectWithNotice(w, r, back, "Status updated.")
	}
}
