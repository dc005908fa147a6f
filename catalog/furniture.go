package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/internal/money"
)

const furniturePath = "/api/furniture/"

var (
	FurnitureCategories = []string{"sofa", "bed", "table", "chair", "storage", "appliance", "decor", "other"}
	FurnitureConditions = []string{"new", "like_new", "good", "fair"}
)

type Furniture struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Condition   string       `json:"condition"`
	ListingType string       `json:"listing_type"`
	MonthlyRent money.Amount `json:"monthly_rent"`
	SalePrice   money.Amount `json:"sale_price"`
	Stock       int          `json:"stock"`
	Available   bool         `json:"is_available"`
	Photos      []Photo      `json:"images"`
}

func (f Furniture) Cover() string {
	if len(f.Photos) == 0 {
		return ""
	}
	return f.Photos[0].Image
}

// Price is the monthly rent for rental items and the sale price otherwise.
func (f Furniture) Price() money.Amount {
	if f.ListingType == ListingRent {
		return f.MonthlyRent
	}
	return f.SalePrice
}

type FurnitureInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Category    string  `json:"category" validate:"required,oneof=sofa bed table chair storage appliance decor other"`
	Condition   string  `json:"condition" validate:"required,oneof=new like_new good fair"`
	ListingType string  `json:"listing_type" validate:"required,oneof=rent sale"`
	MonthlyRent float64 `json:"monthly_rent" validate:"gte=0,required_if=ListingType rent"`
	SalePrice   float64 `json:"sale_price" validate:"gte=0,required_if=ListingType sale"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Available   bool    `json:"is_available"`
}

func (f Furniture) Input() FurnitureInput {
	return FurnitureInput{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Condition:   f.Condition,
		ListingType: f.ListingType,
		MonthlyRent: float64(f.MonthlyRent),
		SalePrice:   float64(f.SalePrice),
		Stock:       f.Stock,
		Available:   f.Available,
	}
}

func (in FurnitureInput) form() *apiclient.Form {
	return apiclient.NewForm().
		Set("name", in.Name).
		Set("description", in.Description).
		Set("category", in.Category).
		Set("condition", in.Condition).
		Set("listing_type", in.ListingType).
		Set("monthly_rent", formatFloat(in.MonthlyRent)).
		Set("sale_price", formatFloat(in.SalePrice)).
		Set("stock", strconv.Itoa(in.Stock)).
		Set("is_available", strconv.FormatBool(in.Available))
}

func (s *Service) ListFurniture(ctx context.Context, f Filter) (apiclient.Page[Furniture], error) {
	page, err := apiclient.GetList[Furniture](ctx, s.api, furniturePath, f.values("category"), "furniture")
	if err != nil {
		return page, fmt.Errorf("[catalog ListFurniture] %w", err)
	}
	return page, nil
}

func (s *Service) GetFurniture(ctx context.Context, id int) (*Furniture, error) {
	var f Furniture
	if err := s.get(ctx, furniturePath, id, &f); err != nil {
		return nil, fmt.Errorf("[catalog GetFurniture] %w", err)
	}
	return &f, nil
}

func (s *Service) CreateFurniture(ctx context.Context, in FurnitureInput, photos []apiclient.File) (*Furniture, error) {
	var f Furniture
	if err := s.send(ctx, http.MethodPost, furniturePath, in, in.form(), photos, &f); err != nil {
		return nil, fmt.Errorf("[catalog CreateFurniture] %w", err)
	}
	return &f, nil
}

func (s *Service) UpdateFurniture(ctx context.Context, id int, in FurnitureInput, photos []apiclient.File) (*Furniture, error) {
	path, err := itemPath(furniturePath, id)
	if err != nil {
		return nil, fmt.Errorf("[catalog UpdateFurniture] %w", err)
	}
	var f Furniture
	if err := s.send(ctx, http.MethodPatch, path, in, in.form(), photos, &f); err != nil {
		return nil, fmt.Errorf("[catalog UpdateFurniture] %w", err)
	}
	return &f, nil
}

func (s *Service) DeleteFurniture(ctx context.Context, id int) error {
	if err := s.delete(ctx, furniturePath, id); err != nil {
		return fmt.Errorf("[catalog DeleteFurniture] %w", err)
	}
	return nil
}
