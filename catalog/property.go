package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/internal/money"
)

const propertiesPath = "/api/properties/"

var PropertyTypes = []string{"apartment", "house", "villa", "studio", "commercial", "land"}

type Property struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Location     string       `json:"location"`
	PropertyType string       `json:"property_type"`
	ListingType  string       `json:"listing_type"`
	Price        money.Amount `json:"price"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	AreaSqft     int          `json:"area_sqft"`
	Available    bool         `json:"is_available"`
	Photos       []Photo      `json:"images"`
}

// Cover is the first photo URL, or "".
func (p Property) Cover() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0].Image
}

// PropertyInput is the editable part of a Property.
type PropertyInput struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  string  `json:"description" validate:"max=5000"`
	Location     string  `json:"location" validate:"required,max=255"`
	PropertyType string  `json:"property_type" validate:"required,oneof=apartment house villa studio commercial land"`
	ListingType  string  `json:"listing_type" validate:"required,oneof=rent sale"`
	Price        float64 `json:"price" validate:"gt=0"`
	Bedrooms     int     `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms    int     `json:"bathrooms" validate:"gte=0,lte=50"`
	AreaSqft     int     `json:"area_sqft" validate:"gte=0"`
	Available    bool    `json:"is_available"`
}

// Input returns the editable fields of p, for prefilling an edit form.
func (p Property) Input() PropertyInput {
	return PropertyInput{
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		ListingType:  p.ListingType,
		Price:        float64(p.Price),
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		AreaSqft:     p.AreaSqft,
		Available:    p.Available,
	}
}

func (in PropertyInput) form() *apiclient.Form {
	return apiclient.NewForm().
		Set("title", in.Title).
		Set("description", in.Description).
		Set("location", in.Location).
		Set("property_type", in.PropertyType).
		Set("listing_type", in.ListingType).
		Set("price", formatFloat(in.Price)).
		Set("bedrooms", strconv.Itoa(in.Bedrooms)).
		Set("bathrooms", strconv.Itoa(in.Bathrooms)).
		Set("area_sqft", strconv.Itoa(in.AreaSqft)).
		Set("is_available", strconv.FormatBool(in.Available))
}

func (s *Service) ListProperties(ctx context.Context, f Filter) (apiclient.Page[Property], error) {
	page, err := apiclient.GetList[Property](ctx, s.api, propertiesPath, f.values("property_type"), "properties")
	if err != nil {
		return page, fmt.Errorf("[catalog ListProperties] %w", err)
	}
	return page, nil
}

func (s *Service) GetProperty(ctx context.Context, id int) (*Property, error) {
	var p Property
	if err := s.get(ctx, propertiesPath, id, &p); err != nil {
		return nil, fmt.Errorf("[catalog GetProperty] %w", err)
	}
	return &p, nil
}

// CreateProperty posts a new listing with its photos as one multipart form.
func (s *Service) CreateProperty(ctx context.Context, in PropertyInput, photos []apiclient.File) (*Property, error) {
	var p Property
	if err := s.send(ctx, http.MethodPost, propertiesPath, in, in.form(), photos, &p); err != nil {
		return nil, fmt.Errorf("[catalog CreateProperty] %w", err)
	}
	return &p, nil
}

// UpdateProperty patches a listing. New photos are added to the existing ones.
func (s *Service) UpdateProperty(ctx context.Context, id int, in PropertyInput, photos []apiclient.File) (*Property, error) {
	path, err := itemPath(propertiesPath, id)
	if err != nil {
		return nil, fmt.Errorf("[catalog UpdateProperty] %w", err)
	}
	var p Property
	if err := s.send(ctx, http.MethodPatch, path, in, in.form(), photos, &p); err != nil {
		return nil, fmt.Errorf("[catalog UpdateProperty] %w", err)
	}
	return &p, nil
}

func (s *Service) DeleteProperty(ctx context.Context, id int) error {
	if err := s.delete(ctx, propertiesPath, id); err != nil {
		return fmt.Errorf("[catalog DeleteProperty] %w", err)
	}
	return nil
}
