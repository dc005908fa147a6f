package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
)

const (
	createOrderPath = "/api/payments/create-order/"
	verifyPath      = "/api/payments/verify/"
)

// OrderRequest asks the backend to open a gateway order for an item. The
// backend prices the order; the client never sends an amount.
type OrderRequest struct {
	ItemType string `json:"item_type" validate:"required,oneof=property furniture rental_payment"`
	ItemID   int    `json:"item_id" validate:"gt=0"`
	Purpose  string `json:"purpose" validate:"required,oneof=rent buy deposit booking installment"`
}

// Order is the gateway order as created by the backend. Amount is in minor
// currency units.
type Order struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
}

// Prefill seeds the checkout widget's customer fields.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Options is the descriptor handed to the hosted checkout constructor.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"order_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Prefill     Prefill `json:"prefill"`
}

// Callback is what the widget reports on completion.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// Verification is the backend's verdict on a callback.
type Verification struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type Service struct {
	api apiclient.Doer
}

func NewService(api apiclient.Doer) *Service {
	return &Service{api: api}
}

func (s *Service) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var order Order
	if err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: createOrderPath, Body: req}, &order); err != nil {
		return nil, fmt.Errorf("[payments CreateOrder] %w", err)
	}
	if order.OrderID == "" || order.Key == "" || order.Amount <= 0 {
		return nil, fmt.Errorf("[payments CreateOrder] incomplete order from backend: %w", apperrors.ErrInternal)
	}
	if order.Currency == "" {
		order.Currency = "INR"
	}
	return &order, nil
}

// CheckoutOptions builds the widget descriptor for order. name is the
// merchant name shown in the widget.
func CheckoutOptions(order Order, prefill Prefill, name string) Options {
	return Options{
		Key:         order.Key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		OrderID:     order.OrderID,
		Name:        name,
		Description: order.Description,
		Prefill:     prefill,
	}
}

// Verify forwards a widget callback to the backend. Success is only reported
// when the backend confirms the signature; anything else is
// ErrPaymentNotVerified.
func (s *Service) Verify(ctx context.Context, cb Callback) (*Verification, error) {
	cb.PaymentID = strings.TrimSpace(cb.PaymentID)
	cb.OrderID = strings.TrimSpace(cb.OrderID)
	cb.Signature = strings.TrimSpace(cb.Signature)
	if err := validation.Struct(cb); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: verifyPath, Body: cb}, &raw)
	if err != nil {
		if apiclient.KindOf(err) == apiclient.KindValidation {
			return nil, fmt.Errorf("[payments Verify] %w: %w", apperrors.ErrPaymentNotVerified, err)
		}
		return nil, fmt.Errorf("[payments Verify] %w", err)
	}

	v := parseVerification(raw)
	if !v.Verified {
		return &v, fmt.Errorf("[payments Verify] %w: %s", apperrors.ErrPaymentNotVerified, v.Message)
	}
	return &v, nil
}

// parseVerification accepts {"verified": true}, {"status": "success"} and
// {"success": true}.
func parseVerification(raw json.RawMessage) Verification {
	var body struct {
		Verification
		Success *bool  `json:"success"`
		Detail  string `json:"detail"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return Verification{}
	}

	v := body.Verification
	if v.Message == "" {
		v.Message = body.Detail
	}
	switch {
	case v.Verified:
	case body.Success != nil:
		v.Verified = *body.Success
	case strings.EqualFold(v.Status, "success"), strings.EqualFold(v.Status, "verified"), strings.EqualFold(v.Status, "paid"):
		v.Verified = true
	}
	return v
}
