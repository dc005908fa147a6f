package inquiries

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
)

const (
	contactPath  = "/api/contact/"
	bookingsPath = "/api/bookings/"
)

// Follow-up statuses shared by inquiries and booking requests.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusClosed    = "closed"
)

var Statuses = []string{StatusNew, StatusContacted, StatusClosed}

// ContactInquiry is a message from the public contact form.
type ContactInquiry struct {
	ID        int       `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone" validate:"omitempty,min=7,max=20"`
	Subject   string    `json:"subject" validate:"required,max=200"`
	Message   string    `json:"message" validate:"required,min=10,max=5000"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// BookingRequest asks to rent, buy or visit a listing.
type BookingRequest struct {
	ID             int       `json:"id,omitempty"`
	ItemType       string    `json:"item_type" validate:"required,oneof=property furniture"`
	ItemID         int       `json:"item_id" validate:"gt=0"`
	RequestType    string    `json:"request_type" validate:"required,oneof=rent buy visit"`
	Name           string    `json:"name" validate:"required,max=100"`
	Email          string    `json:"email" validate:"required,email,max=254"`
	Phone          string    `json:"phone" validate:"required,min=7,max=20"`
	StartDate      string    `json:"start_date,omitempty" validate:"required_if=RequestType rent,omitempty,datetime=2006-01-02"`
	DurationMonths int       `json:"duration_months,omitempty" validate:"required_if=RequestType rent,gte=0,lte=60"`
	Message        string    `json:"message" validate:"max=2000"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// Service submits storefront forms and lists them for staff.
type Service struct {
	api apiclient.Doer
	now func() time.Time
}

func NewService(api apiclient.Doer) *Service {
	return &Service{api: api, now: time.Now}
}

func (s *Service) Submit(ctx context.Context, in ContactInquiry) (*ContactInquiry, error) {
	in = in.normalised()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var out ContactInquiry
	if err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: contactPath, Body: in}, &out); err != nil {
		return nil, fmt.Errorf("[inquiries Submit] %w", err)
	}
	return &out, nil
}

func (s *Service) SubmitBooking(ctx context.Context, in BookingRequest) (*BookingRequest, error) {
	in = in.normalised()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.StartDate != "" {
		start, _ := time.Parse("2006-01-02", in.StartDate)
		y, m, d := s.now().Date()
		if start.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			return nil, validation.Errors{"start_date": {"must not be in the past"}}
		}
	}

	var out BookingRequest
	if err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: bookingsPath, Body: in}, &out); err != nil {
		return nil, fmt.Errorf("[inquiries SubmitBooking] %w", err)
	}
	return &out, nil
}

func (s *Service) List(ctx context.Context, status string) (apiclient.Page[ContactInquiry], error) {
	page, err := apiclient.GetList[ContactInquiry](ctx, s.api, contactPath, statusQuery(status), "inquiries")
	if err != nil {
		return page, fmt.Errorf("[inquiries List] %w", err)
	}
	return page, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int, status string) error {
	return s.updateStatus(ctx, contactPath, id, status)
}

func (s *Service) ListBookings(ctx context.Context, status string) (apiclient.Page[BookingRequest], error) {
	page, err := apiclient.GetList[BookingRequest](ctx, s.api, bookingsPath, statusQuery(status), "bookings")
	if err != nil {
		return page, fmt.Errorf("[inquiries ListBookings] %w", err)
	}
	return page, nil
}

func (s *Service) UpdateBookingStatus(ctx context.Context, id int, status string) error {
	return s.updateStatus(ctx, bookingsPath, id, status)
}

func (s *Service) updateStatus(ctx context.Context, base string, id int, status string) error {
	if id <= 0 {
		return fmt.Errorf("[inquiries UpdateStatus] %w: %d", apperrors.ErrInvalidID, id)
	}
	if !slices.Contains(Statuses, status) {
		return fmt.Errorf("[inquiries UpdateStatus] %w: status %q", apperrors.ErrInvalidInput, status)
	}
	err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPatch,
		Path:   base + strconv.Itoa(id) + "/",
		Body:   map[string]string{"status": status},
	}, nil)
	if err != nil {
		return fmt.Errorf("[inquiries UpdateStatus] %w", err)
	}
	return nil
}

func statusQuery(status string) url.Values {
	if status == "" {
		return nil
	}
	return url.Values{"status": {status}}
}

func (in ContactInquiry) normalised() ContactInquiry {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	return in
}

func (in BookingRequest) normalised() BookingRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if in.RequestType != "rent" {
		in.DurationMonths = 0
	}
	return in
}
