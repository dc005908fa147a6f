package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
	"github.com/jrsteele09/go-rental-storefront/payments"
	"github.com/rs/zerolog"
)

const (
	maxCallbackBytes = 16 << 10

	msgPaymentFailed = "We could not confirm your payment. If you were charged, contact us with your order reference."
)

var checkoutKinds = []string{"property", "furniture", "rental_payment"}

// defaultPurpose is used when the checkout link names no purpose.
var defaultPurpose = map[string]string{
	"property":       "booking",
	"furniture":      "buy",
	"rental_payment": "installment",
}

type checkoutView struct {
	Order   payments.Order
	Options payments.Options
	Kind    string
	ItemID  int
	Purpose string
}

// CheckoutHandler opens a gateway order for the item and renders the page
// that launches the hosted checkout widget.
func (s *Server) CheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		id, ok := pathID(r)
		if !ok || !slices.Contains(checkoutKinds, kind) {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		purpose := r.URL.Query().Get("purpose")
		if purpose == "" {
			purpose = defaultPurpose[kind]
		}

		sc := s.scopeFrom(r.Context())
		order, err := sc.payments().CreateOrder(r.Context(), payments.OrderRequest{ItemType: kind, ItemID: id, Purpose: purpose})
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInput) {
				s.renderError(w, r, http.StatusBadRequest, "That item cannot be paid for online.")
				return
			}
			s.handleError(w, r, err)
			return
		}

		var prefill payments.Prefill
		if p := sc.session.Profile(); p != nil {
			prefill = payments.Prefill{Name: p.DisplayName(), Email: p.Email}
		}
		s.renderPage(w, r, "checkout.html", "Checkout", view{Data: checkoutView{
			Order:   *order,
			Options: payments.CheckoutOptions(*order, prefill, s.config.GetCheckoutName()),
			Kind:    kind,
			ItemID:  id,
			Purpose: purpose,
		}})
	}
}

type verifyResponse struct {
	Verified bool                `json:"verified"`
	Message  string              `json:"message,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// VerifyPaymentHandler receives the widget callback from the checkout page and
// asks the backend to verify it. Only a backend confirmation is reported as
// success.
func (s *Server) VerifyPaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cb payments.Callback
		r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBytes)
		if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
			writeJSON(w, http.StatusBadRequest, verifyResponse{Message: "Malformed payment callback."})
			return
		}

		sc := s.scopeFrom(r.Context())
		logger := zerolog.Ctx(r.Context())
		v, err := sc.payments().Verify(r.Context(), cb)
		switch {
		case err == nil:
			logger.Info().Str("order_id", cb.OrderID).Str("payment_id", cb.PaymentID).Msg("payment verified")
			writeJSON(w, http.StatusOK, verifyResponse{
				Verified: true,
				Message:  v.Message,
				Redirect: withQuery(RouteCheckoutComplete, "order", cb.OrderID),
			})
		case errors.Is(err, apiclient.ErrSessionExpired):
			s.metrics.sessionExpired()
			s.clearSessionCookie(w, r)
			writeJSON(w, http.StatusUnauthorized, verifyResponse{Message: msgSessionExpired, Redirect: RouteLogin})
		case validation.FieldErrors(err) != nil:
			writeJSON(w, http.StatusBadRequest, verifyResponse{Message: msgFixFields, Errors: validation.FieldErrors(err)})
		case errors.Is(err, apperrors.ErrPaymentNotVerified):
			logger.Warn().Err(err).Str("order_id", cb.OrderID).Msg("payment not verified")
			writeJSON(w, http.StatusPaymentRequired, verifyResponse{Message: msgPaymentFailed})
		default:
			logger.Error().Err(err).Str("order_id", cb.OrderID).Msg("payment verification failed")
			writeJSON(w, statusFor(err), verifyResponse{Message: userMessage(err)})
		}
	}
}

func (s *Server) CheckoutCompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, "checkout_complete.html", "Payment received", view{Data: r.URL.Query().Get("order")})
	}
}
