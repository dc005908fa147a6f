package server

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/jrsteele09/go-rental-storefront/rentals"
	"golang.org/x/sync/errgroup"
)

func (s *Server) AdminRentalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if !slices.Contains(rentals.RentalStatuses, status) {
			status = ""
		}
		page, err := s.scopeFrom(r.Context()).rentals().ListRentals(r.Context(), status)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderAdminPage(w, r, "rentals", "Rentals", "admin_rentals.html", view{Data: map[string]any{
			"Items":    page.Items,
			"Status":   status,
			"Statuses": rentals.RentalStatuses,
		}})
	}
}

// AdminRentalHandler shows one contract with its payment schedule.
func (s *Server) AdminRentalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		svc := s.scopeFrom(r.Context()).rentals()

		var (
			rental   *rentals.Rental
			payments []rentals.RentalPayment
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			rental, err = svc.GetRental(ctx, id)
			return err
		})
		g.Go(func() error {
			page, err := svc.ListPayments(ctx, id)
			payments = page.Items
			return err
		})
		if err := g.Wait(); err != nil {
			s.handleError(w, r, err)
			return
		}
		slices.SortFunc(payments, func(a, b rentals.RentalPayment) int {
			return a.DueDate.Compare(b.DueDate.Time)
		})

		s.renderAdminPage(w, r, "rentals", fmt.Sprintf("Rental #%d", id), "admin_rental.html", view{Data: map[string]any{
			"Rental":   rental,
			"Payments": payments,
			"Statuses": rentals.RentalStatuses,
		}})
	}
}

func (s *Server) AdminRentalStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		back := pathFor(RouteAdminRental, id)
		f, err := parseForm(w, r)
		if err != nil {
			redirectWithError(w, r, back, msgFixFields)
			return
		}
		if _, err := s.scopeFrom(r.Context()).rentals().UpdateRentalStatus(r.Context(), id, f.text("status")); err != nil {
			s.actionFailed(w, r, back, err)
			return
		}
		redirectWithNotice(w, r, back, "Rental status updated.")
	}
}

func (s *Server) AdminRentalGenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		back := pathFor(RouteAdminRental, id)
		created, err := s.scopeFrom(r.Context()).rentals().GeneratePayments(r.Context(), id)
		if err != nil {
			s.actionFailed(w, r, back, err)
			return
		}
		notice := "Payment schedule generated."
		if len(created) > 0 {
			notice = fmt.Sprintf("Generated %d payments.", len(created))
		}
		redirectWithNotice(w, r, back, notice)
	}
}

// paymentBack is the page a payment action returns to: the rental named in
// the form, or the dues page.
func paymentBack(f *formReader) string {
	if rentalID := f.number("rental"); rentalID > 0 {
		return pathFor(RouteAdminRental, rentalID)
	}
	return RouteAdminDues
}

func (s *Server) AdminPaymentMarkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		f, err := parseForm(w, r)
		if err != nil {
			redirectWithError(w, r, RouteAdminDues, msgFixFields)
			return
		}
		back := paymentBack(f)
		status := f.text("status")
		if status == "" {
			status = rentals.PaymentPaid
		}
		if _, err := s.scopeFrom(r.Context()).rentals().MarkPayment(r.Context(), id, status); err != nil {
			s.actionFailed(w, r, back, err)
			return
		}
		redirectWithNotice(w, r, back, "Payment marked "+status+".")
	}
}

func (s *Server) AdminPaymentRemindHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		f, err := parseForm(w, r)
		if err != nil {
			redirectWithError(w, r, RouteAdminDues, msgFixFields)
			return
		}
		back := paymentBack(f)
		if err := s.scopeFrom(r.Context()).rentals().SendReminder(r.Context(), id); err != nil {
			s.actionFailed(w, r, back, err)
			return
		}
		redirectWithNotice(w, r, back, "Reminder sent.")
	}
}
