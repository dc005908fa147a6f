package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/catalog"
	"golang.org/x/sync/errgroup"
)

const featuredCount = 6

// pager links the pages of a backend list.
type pager struct {
	Page    int
	Count   int
	PrevURL string
	NextURL string
}

func newPager[T any](r *http.Request, current int, p apiclient.Page[T]) pager {
	if current < 1 {
		current = 1
	}
	pg := pager{Page: current, Count: p.Count}
	if p.Previous != "" && current > 1 {
		pg.PrevURL = pageURL(r.URL, current-1)
	}
	if p.Next != "" {
		pg.NextURL = pageURL(r.URL, current+1)
	}
	return pg
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

type listingQuery struct {
	Search    string
	Type      string
	Listing   string
	Min       string
	Max       string
	Available string
}

func listingQueryFrom(q url.Values) listingQuery {
	return listingQuery{
		Search:    q.Get("q"),
		Type:      q.Get("type"),
		Listing:   q.Get("listing"),
		Min:       q.Get("min"),
		Max:       q.Get("max"),
		Available: q.Get("available"),
	}
}

// HomeHandler shows the first few listings of each kind.
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc := s.scopeFrom(r.Context()).catalog()
		available := true
		filter := catalog.Filter{Available: &available}

		var (
			properties []catalog.Property
			furniture  []catalog.Furniture
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			page, err := svc.ListProperties(ctx, filter)
			properties = firstN(page.Items, featuredCount)
			return err
		})
		g.Go(func() error {
			page, err := svc.ListFurniture(ctx, filter)
			furniture = firstN(page.Items, featuredCount)
			return err
		})
		if err := g.Wait(); err != nil {
			s.handleError(w, r, err)
			return
		}

		s.renderPage(w, r, "home.html", "Home", view{Data: map[string]any{
			"Properties": properties,
			"Furniture":  furniture,
		}})
	}
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (s *Server) PropertiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.FilterFromQuery(r.URL.Query())
		page, err := s.scopeFrom(r.Context()).catalog().ListProperties(r.Context(), filter)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderPage(w, r, "properties.html", "Properties", view{Data: map[string]any{
			"Items": page.Items,
			"Pager": newPager(r, filter.Page, page),
			"Query": listingQueryFrom(r.URL.Query()),
			"Types": catalog.PropertyTypes,
		}})
	}
}

func (s *Server) PropertyHandler() http.HandlerFunc {
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
		s.renderPage(w, r, "property.html", property.Title, view{Data: property})
	}
}

func (s *Server) FurnitureListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.FilterFromQuery(r.URL.Query())
		page, err := s.scopeFrom(r.Context()).catalog().ListFurniture(r.Context(), filter)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.renderPage(w, r, "furniture_list.html", "Furniture", view{Data: map[string]any{
			"Items": page.Items,
			"Pager": newPager(r, filter.Page, page),
			"Query": listingQueryFrom(r.URL.Query()),
			"Types": catalog.FurnitureCategories,
		}})
	}
}

func (s *Server) FurnitureHandler() http.HandlerFunc {
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
		s.renderPage(w, r, "furniture.html", item.Name, view{Data: item})
	}
}
