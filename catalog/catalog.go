package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
)

const (
	ListingRent = "rent"
	ListingSale = "sale"

	maxPhotoBytes = 5 << 20
	maxPhotos     = 10
	photoField    = "images"
)

// Photo is an uploaded listing image.
type Photo struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

// Filter narrows a listing query. Zero values are left out of the query.
type Filter struct {
	Search      string
	Type        string
	ListingType string
	MinPrice    float64
	MaxPrice    float64
	Available   *bool
	Page        int
}

func (f Filter) values(typeParam string) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Type != "" {
		q.Set(typeParam, f.Type)
	}
	if f.ListingType != "" {
		q.Set("listing_type", f.ListingType)
	}
	if f.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Available != nil {
		q.Set("is_available", strconv.FormatBool(*f.Available))
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

// FilterFromQuery reads a Filter from storefront query parameters. Malformed
// numbers are ignored.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		Search:      strings.TrimSpace(q.Get("q")),
		Type:        q.Get("type"),
		ListingType: q.Get("listing"),
	}
	f.MinPrice, _ = strconv.ParseFloat(q.Get("min"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(q.Get("max"), 64)
	f.Page, _ = strconv.Atoi(q.Get("page"))
	if v, err := strconv.ParseBool(q.Get("available")); err == nil {
		f.Available = &v
	}
	return f
}

// Service reads and writes property and furniture listings.
type Service struct {
	api apiclient.Doer
}

func NewService(api apiclient.Doer) *Service {
	return &Service{api: api}
}

// ValidatePhotos checks uploads before they are sent.
func ValidatePhotos(files []apiclient.File) error {
	errs := validation.Errors{}
	if len(files) > maxPhotos {
		errs.Add(photoField, fmt.Sprintf("at most %d photos can be uploaded at once", maxPhotos))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			errs.Add(photoField, fmt.Sprintf("%s is not an image", f.Name))
		}
		if len(f.Content) > maxPhotoBytes {
			errs.Add(photoField, fmt.Sprintf("%s is larger than %d MB", f.Name, maxPhotoBytes>>20))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func itemPath(base string, id int) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: %d", apperrors.ErrInvalidID, id)
	}
	return base + strconv.Itoa(id) + "/", nil
}

// send validates input and photos, then writes the multipart form.
func (s *Service) send(ctx context.Context, method, path string, input any, form *apiclient.Form, files []apiclient.File, out any) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	if err := ValidatePhotos(files); err != nil {
		return err
	}
	for _, f := range files {
		f.Field = photoField
		form.AddFile(f)
	}
	return s.api.Do(ctx, &apiclient.Request{Method: method, Path: path, Body: form}, out)
}

func (s *Service) get(ctx context.Context, base string, id int, out any) error {
	path, err := itemPath(base, id)
	if err != nil {
		return err
	}
	return s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: path}, out)
}

func (s *Service) delete(ctx context.Context, base string, id int) error {
	path, err := itemPath(base, id)
	if err != nil {
		return err
	}
	return s.api.Do(ctx, &apiclient.Request{Method: http.MethodDelete, Path: path}, nil)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
