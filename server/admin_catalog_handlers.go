package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-rental-storefront/catalog"
)

// listingFormView backs both listing forms. Item is the stored listing when
// editing, for showing its current photos.
type listingFormView struct {
	Action     string
	Item       any
	Types      []string
	Conditions []string
}

func (s *Server) AdminPropertiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.FilterFromQuery(r.URL.Query())
		page, err := s.scopeFrom(r.Context()).catalog().ListProperties(r.Context(), filter)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderAdminPage(w, r, "properties", "Properties", "admin_properties.html", view{Data: map[string]any{
			"Items": page.Items,
			"Pager": newPager(r, filter.Page, page),
			"Query": listingQueryFrom(r.URL.Query()),
			"Types": catalog.PropertyTypes,
		}})
	}
}

func (s *Server) AdminPropertyNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := catalog.PropertyInput{ListingType: catalog.ListingRent, Available: true}
		s.renderAdminPage(w, r, "properties", "New property", "admin_property_form.html", view{
			Form: form,
			Data: listingFormView{Action: RouteAdminProperties, Types: catalog.PropertyTypes},
		})
	}
}

func (s *Server) AdminPropertyEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		property, err := s.scopeFrom(r.Context()).catalog().GetProperty(r.Context(), id)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderAdminPage(w, r, "properties", "Edit property", "admin_property_form.html", view{
			Form: property.Input(),
			Data: listingFormView{Action: pathFor(RouteAdminProperty, id), Item: property, Types: catalog.PropertyTypes},
		})
	}
}

// AdminPropertySaveHandler creates a property, or updates the one named in the
// path.
func (s *Server) AdminPropertySaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, editing := pathID(r)
		formView := listingFormView{Action: RouteAdminProperties, Types: catalog.PropertyTypes}
		title := "New property"
		if editing {
			formView.Action = pathFor(RouteAdminProperty, id)
			title = "Edit property"
		}

		f, photos, err := parseMultipart(w, r)
		if err != nil {
			redirectWithError(w, r, formView.Action, "The upload could not be read. Photos must be 5 MB or smaller.")
			return
		}
		form := catalog.PropertyInput{
			Title:        f.text("title"),
			Description:  f.text("description"),
			Location:     f.text("location"),
			PropertyType: f.text("property_type"),
			ListingType:  f.text("listing_type"),
			Price:        f.decimal("price"),
			Bedrooms:     f.number("bedrooms"),
			Bathrooms:    f.number("bathrooms"),
			AreaSqft:     f.number("area_sqft"),
			Available:    f.checked("is_available"),
		}
		if err := f.err(); err != nil {
			s.renderForm(w, r, adminLayoutTemplate, "admin_property_form.html", title, "properties", view{Form: form, Errors: f.errs, Error: msgFixFields, Data: formView})
			return
		}

		svc := s.scopeFrom(r.Context()).catalog()
		var saved *catalog.Property
		if editing {
			saved, err = svc.UpdateProperty(r.Context(), id, form, photos)
		} else {
			saved, err = svc.CreateProperty(r.Context(), form, photos)
		}
		if err != nil {
			if fields, msg, ok := formFailure(err); ok {
				s.renderForm(w, r, adminLayoutTemplate, "admin_property_form.html", title, "properties", view{Form: form, Errors: fields, Error: msg, Data: formView})
				return
			}
			s.handleError(w, r, err)
			return
		}
		redirectWithNotice(w, r, RouteAdminProperties, "Saved "+saved.Title+".")
	}
}

func (s *Server) AdminPropertyDeleteHandler() http.HandlerFunc {
	return s.deleteListingHandler(RouteAdminProperties, (*catalog.Service).DeleteProperty)
}

func (s *Server) AdminFurnitureListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.FilterFromQuery(r.URL.Query())
		page, err := s.scopeFrom(r.Context()).catalog().ListFurniture(r.Context(), filter)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderAdminPage(w, r, "furniture", "Furniture", "admin_furniture.html", view{Data: map[string]any{
			"Items": page.Items,
			"Pager": newPager(r, filter.Page, page),
			"Query": listingQueryFrom(r.URL.Query()),
			"Types": catalog.FurnitureCategories,
		}})
	}
}

func (s *Server) AdminFurnitureNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := catalog.FurnitureInput{ListingType: catalog.ListingRent, Condition: "new", Stock: 1, Available: true}
		s.renderAdminPage(w, r, "furniture", "New furniture", "admin_furniture_form.html", view{
			Form: form,
			Data: furnitureFormView(RouteAdminFurniture, nil),
		})
	}
}

func (s *Server) AdminFurnitureEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		item, err := s.scopeFrom(r.Context()).catalog().GetFurniture(r.Context(), id)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderAdminPage(w, r, "furniture", "Edit furniture", "admin_furniture_form.html", view{
			Form: item.Input(),
			Data: furnitureFormView(pathFor(RouteAdminFurnitureItem, id), item),
		})
	}
}

func (s *Server) AdminFurnitureSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, editing := pathID(r)
		formView := furnitureFormView(RouteAdminFurniture, nil)
		title := "New furniture"
		if editing {
			formView.Action = pathFor(RouteAdminFurnitureItem, id)
			title = "Edit furniture"
		}

		f, photos, err := parseMultipart(w, r)
		if err != nil {
			redirectWithError(w, r, formView.Action, "The upload could not be read. Photos must be 5 MB or smaller.")
			return
		}
		form := catalog.FurnitureInput{
			Name:        f.text("name"),
			Description: f.text("description"),
			Category:    f.text("category"),
			Condition:   f.text("condition"),
			ListingType: f.text("listing_type"),
			MonthlyRent: f.decimal("monthly_rent"),
			SalePrice:   f.decimal("sale_price"),
			Stock:       f.number("stock"),
			Available:   f.checked("is_available"),
		}
		if err := f.err(); err != nil {
			s.renderForm(w, r, adminLayoutTemplate, "admin_furniture_form.html", title, "furniture", view{Form: form, Errors: f.errs, Error: msgFixFields, Data: formView})
			return
		}

		svc := s.scopeFrom(r.Context()).catalog()
		var saved *catalog.Furniture
		if editing {
			saved, err = svc.UpdateFurniture(r.Context(), id, form, photos)
		} else {
			saved, err = svc.CreateFurniture(r.Context(), form, photos)
		}
		if err != nil {
			if fields, msg, ok := formFailure(err); ok {
				s.renderForm(w, r, adminLayoutTemplate, "admin_furniture_form.html", title, "furniture", view{Form: form, Errors: fields, Error: msg, Data: formView})
				return
			}
			s.handleError(w, r, err)
			return
		}
		redirectWithNotice(w, r, RouteAdminFurniture, "Saved "+saved.Name+".")
	}
}

func (s *Server) AdminFurnitureDeleteHandler() http.HandlerFunc {
	return s.deleteListingHandler(RouteAdminFurniture, (*catalog.Service).DeleteFurniture)
}

func furnitureFormView(action string, item *catalog.Furniture) listingFormView {
	v := listingFormView{Action: action, Types: catalog.FurnitureCategories, Conditions: catalog.FurnitureConditions}
	if item != nil {
		v.Item = item
	}
	return v
}

func (s *Server) deleteListingHandler(back string, remove func(*catalog.Service, context.Context, int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		if err := remove(s.scopeFrom(r.Context()).catalog(), r.Context(), id); err != nil {
			s.actionFailed(w, r, back, err)
			return
		}
		redirectWithNotice(w, r, back, "Listing deleted.")
	}
}

// photosOf lists the stored photos of the listing being edited.
func photosOf(v listingFormView) []catalog.Photo {
	switch item := v.Item.(type) {
	case *catalog.Property:
		return item.Photos
	case *catalog.Furniture:
		return item.Photos
	}
	return nil
}
