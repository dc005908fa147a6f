package rentals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/money"
)

const (
	rentalsPath  = "/api/rentals/"
	paymentsPath = "/api/rental-payments/"
	duesPath     = "/api/rentals/dues/"
)

// Rental statuses.
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses. Overdue is assigned by the backend only.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

var (
	RentalStatuses  = []string{StatusPending, StatusActive, StatusCompleted, StatusCancelled}
	paymentStatuses = []string{PaymentPending, PaymentPaid}
)

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

type Rental struct {
	ID            int          `json:"id"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	CustomerPhone string       `json:"customer_phone"`
	ItemType      string       `json:"item_type"`
	ItemID        int          `json:"item_id"`
	ItemTitle     string       `json:"item_title"`
	MonthlyRent   money.Amount `json:"monthly_rent"`
	Deposit       money.Amount `json:"deposit"`
	StartDate     Date         `json:"start_date"`
	EndDate       Date         `json:"end_date"`
	Status        string       `json:"status"`
}

type RentalPayment struct {
	ID       int          `json:"id"`
	RentalID int          `json:"rental"`
	DueDate  Date         `json:"due_date"`
	Amount   money.Amount `json:"amount"`
	Status   string       `json:"status"`
	PaidOn   Date         `json:"paid_on"`
}

// CustomerDues is the backend's per-customer aggregation of unpaid payments.
type CustomerDues struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalDue      money.Amount    `json:"total_due"`
	OverdueCount  int             `json:"overdue_count"`
	Payments      []RentalPayment `json:"payments"`
}

// Service is the admin view of rental contracts and their payment schedules.
// Every figure shown comes from the backend.
type Service struct {
	api apiclient.Doer
}

func NewService(api apiclient.Doer) *Service {
	return &Service{api: api}
}

// ListRentals lists contracts, optionally filtered by status.
func (s *Service) ListRentals(ctx context.Context, status string) (apiclient.Page[Rental], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	page, err := apiclient.GetList[Rental](ctx, s.api, rentalsPath, q, "rentals")
	if err != nil {
		return page, fmt.Errorf("[rentals ListRentals] %w", err)
	}
	return page, nil
}

func (s *Service) GetRental(ctx context.Context, id int) (*Rental, error) {
	if id <= 0 {
		return nil, fmt.Errorf("[rentals GetRental] %w: %d", apperrors.ErrInvalidID, id)
	}
	var r Rental
	if err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: rentalPath(id)}, &r); err != nil {
		return nil, fmt.Errorf("[rentals GetRental] %w", err)
	}
	return &r, nil
}

func (s *Service) UpdateRentalStatus(ctx context.Context, id int, status string) (*Rental, error) {
	if id <= 0 {
		return nil, fmt.Errorf("[rentals UpdateRentalStatus] %w: %d", apperrors.ErrInvalidID, id)
	}
	if !slices.Contains(RentalStatuses, status) {
		return nil, fmt.Errorf("[rentals UpdateRentalStatus] %w: status %q", apperrors.ErrInvalidInput, status)
	}
	var r Rental
	err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPatch,
		Path:   rentalPath(id),
		Body:   map[string]string{"status": status},
	}, &r)
	if err != nil {
		return nil, fmt.Errorf("[rentals UpdateRentalStatus] %w", err)
	}
	return &r, nil
}

// ListPayments returns the payment schedule of one rental.
func (s *Service) ListPayments(ctx context.Context, rentalID int) (apiclient.Page[RentalPayment], error) {
	if rentalID <= 0 {
		return apiclient.Page[RentalPayment]{}, fmt.Errorf("[rentals ListPayments] %w: %d", apperrors.ErrInvalidID, rentalID)
	}
	q := url.Values{"rental": {strconv.Itoa(rentalID)}}
	page, err := apiclient.GetList[RentalPayment](ctx, s.api, paymentsPath, q, "payments")
	if err != nil {
		return page, fmt.Errorf("[rentals ListPayments] %w", err)
	}
	return page, nil
}

// MarkPayment sets a payment to paid or back to pending.
func (s *Service) MarkPayment(ctx context.Context, paymentID int, status string) (*RentalPayment, error) {
	if paymentID <= 0 {
		return nil, fmt.Errorf("[rentals MarkPayment] %w: %d", apperrors.ErrInvalidID, paymentID)
	}
	if !slices.Contains(paymentStatuses, status) {
		return nil, fmt.Errorf("[rentals MarkPayment] %w: status %q", apperrors.ErrInvalidInput, status)
	}
	var p RentalPayment
	err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPatch,
		Path:   paymentsPath + strconv.Itoa(paymentID) + "/",
		Body:   map[string]string{"status": status},
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("[rentals MarkPayment] %w", err)
	}
	return &p, nil
}

// GeneratePayments asks the backend to create the monthly schedule for a
// rental and returns what it created.
func (s *Service) GeneratePayments(ctx context.Context, rentalID int) ([]RentalPayment, error) {
	if rentalID <= 0 {
		return nil, fmt.Errorf("[rentals GeneratePayments] %w: %d", apperrors.ErrInvalidID, rentalID)
	}
	var raw json.RawMessage
	err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   rentalPath(rentalID) + "generate-payments/",
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("[rentals GeneratePayments] %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	page, err := apiclient.DecodeList[RentalPayment](raw, "payments", "created")
	if errors.Is(err, apiclient.ErrUnknownEnvelope) {
		// a bare {"detail": "..."} acknowledgement
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[rentals GeneratePayments] %w", err)
	}
	return page.Items, nil
}

// Dues returns unpaid balances grouped by customer.
func (s *Service) Dues(ctx context.Context) ([]CustomerDues, error) {
	page, err := apiclient.GetList[CustomerDues](ctx, s.api, duesPath, nil, "dues", "customers")
	if err != nil {
		return nil, fmt.Errorf("[rentals Dues] %w", err)
	}
	return page.Items, nil
}

// SendReminder asks the backend to email the customer about a payment.
func (s *Service) SendReminder(ctx context.Context, paymentID int) error {
	if paymentID <= 0 {
		return fmt.Errorf("[rentals SendReminder] %w: %d", apperrors.ErrInvalidID, paymentID)
	}
	err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   paymentsPath + strconv.Itoa(paymentID) + "/send-reminder/",
	}, nil)
	if err != nil {
		return fmt.Errorf("[rentals SendReminder] %w", err)
	}
	return nil
}

func rentalPath(id int) string {
	return rentalsPath + strconv.Itoa(id) + "/"
}
