package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	msgInvalidPagination = "Page and limit parameters must be positive integers."
	msgInvalidSearchTerm = "Search term (name) is required and must be a non-empty string."
)

var queryValidate = validator.New()

// ListQuery selects one page of the catalog. An empty Category matches every product.
type ListQuery struct {
	Category string
	Page     int64 `validate:"gt=0"`
	Limit    int64 `validate:"gt=0"`
}

// ListResult is one page of products. Total counts the filtered set before pagination.
type ListResult struct {
	Total int          `json:"total"`
	Page  int64        `json:"page"`
	Limit int64        `json:"limit"`
	Data  []ProductDto `json:"data"`
}

// Stats holds aggregate counts. Categories are keyed exactly as stored.
type Stats struct {
	TotalCount      int            `json:"totalCount"`
	TotalInStock    int            `json:"totalInStock"`
	CountByCategory map[string]int `json:"countByCategory"`
}

// ParseListQuery reads category, page and limit. Missing page and limit take their
// defaults; present values must be positive base-10 integers.
func ParseListQuery(values url.Values) (ListQuery, error) {
	query := ListQuery{
		Category: values.Get("category"),
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}

	var err error
	if values.Has("page") {
		if query.Page, err = strconv.ParseInt(values.Get("page"), 10, 32); err != nil {
			return ListQuery{}, apperr.Validation(msgInvalidPagination)
		}
	}
	if values.Has("limit") {
		if query.Limit, err = strconv.ParseInt(values.Get("limit"), 10, 32); err != nil {
			return ListQuery{}, apperr.Validation(msgInvalidPagination)
		}
	}
	if err := queryValidate.Struct(query); err != nil {
		return ListQuery{}, apperr.Validation(msgInvalidPagination)
	}
	return query, nil
}

// ParseSearchQuery returns the single name term. It must be non-empty after trimming.
func ParseSearchQuery(values url.Values) (string, error) {
	names := values["name"]
	if len(names) != 1 || strings.TrimSpace(names[0]) == "" {
		return "", apperr.Validation(msgInvalidSearchTerm)
	}
	return names[0], nil
}

// List filters by category, then paginates.
func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	products := s.store.List(ctx)
	if query.Category != "" {
		products = filterByCategory(products, query.Category)
	}

	return &ListResult{
		Total: len(products),
		Page:  query.Page,
		Limit: query.Limit,
		Data:  toDtos(paginate(products, query.Page, query.Limit)),
	}, nil
}

// Search returns products whose name contains term, ignoring case, in store order.
func (s *service) Search(ctx context.Context, term string) ([]ProductDto, error) {
	needle := strings.ToLower(term)
	var matches []store.Product
	for _, p := range s.store.List(ctx) {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return toDtos(matches), nil
}

// Stats counts products, products in stock and products per category.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{CountByCategory: map[string]int{}}
	for _, p := range s.store.List(ctx) {
		stats.TotalCount++
		if p.InStock {
			stats.TotalInStock++
		}
		stats.CountByCategory[p.Category]++
	}
	return stats, nil
}

func filterByCategory(products []store.Product, category string) []store.Product {
	filtered := make([]store.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// paginate returns the window [(page-1)*limit, page*limit) clamped to the slice.
func paginate(products []store.Product, page, limit int64) []store.Product {
	total := int64(len(products))
	start := (page - 1) * limit
	if start >= total {
		return nil
	}
	end := min(start+limit, total)
	return products[start:end]
}
