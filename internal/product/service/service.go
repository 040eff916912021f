// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
	"github.com/abgdnv/productcatalog/internal/platform/messaging"
	"github.com/abgdnv/productcatalog/internal/product/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// List returns one page of products, optionally filtered by category.
	List(ctx context.Context, query ListQuery) (*ListResult, error)

	// Search returns every product whose name contains term, ignoring case.
	// Returns an empty slice if nothing matches.
	Search(ctx context.Context, term string) ([]ProductDto, error)

	// Stats returns aggregate counts over the whole catalog.
	Stats(ctx context.Context) (*Stats, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns a NotFound failure if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Create adds a new product with a server generated ID.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the provided fields over an existing product.
	// Returns a NotFound failure if no product exists with the given ID.
	Update(ctx context.Context, id string, update ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns a NotFound failure if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error
}

// service implements ProductService and provides methods to manage products.
type service struct {
	store     store.ProductStore
	publisher messaging.Publisher
	subjects  subjects
	logger    *slog.Logger
}

// NewService creates a new instance of ProductService. Lifecycle events are sent to
// publisher on subjects under subjectPrefix.
func NewService(productStore store.ProductStore, publisher messaging.Publisher, subjectPrefix string, logger *slog.Logger) ProductService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &service{
		store:     productStore,
		publisher: publisher,
		subjects:  newSubjects(subjectPrefix),
		logger:    logger.With("component", "product_service"),
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductCreateDto represents the data required to create a new product.
type ProductCreateDto struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductUpdateDto carries a partial update. Nil fields are left unchanged.
type ProductUpdateDto struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
}

func productNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("Product with ID %s not found.", id))
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, ok := s.store.FindByID(ctx, id)
	if !ok {
		return nil, productNotFound(id)
	}
	return toDto(product), nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created := s.store.Create(ctx, store.Fields{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
	})
	s.logger.InfoContext(ctx, "Product created", "ID", created.ID)

	dto := toDto(created)
	s.publish(ctx, newProductEvent(ctx, s.subjects.created, EventCreated, *dto))
	return dto, nil
}

// Update applies the partial update and returns the resulting product.
func (s *service) Update(ctx context.Context, id string, update ProductUpdateDto) (*ProductDto, error) {
	updated, ok := s.store.Update(ctx, id, store.Patch{
		Name:        update.Name,
		Description: update.Description,
		Price:       update.Price,
		Category:    update.Category,
		InStock:     update.InStock,
	})
	if !ok {
		return nil, productNotFound(id)
	}
	s.logger.InfoContext(ctx, "Product updated", "ID", id)

	dto := toDto(updated)
	s.publish(ctx, newProductEvent(ctx, s.subjects.updated, EventUpdated, *dto))
	return dto, nil
}

// DeleteByID deletes a product by its ID.
func (s *service) DeleteByID(ctx context.Context, id string) error {
	if !s.store.Delete(ctx, id) {
		return productNotFound(id)
	}
	s.logger.InfoContext(ctx, "Product deleted", "ID", id)

	s.publish(ctx, newProductEvent(ctx, s.subjects.deleted, EventDeleted, ProductDto{ID: id}))
	return nil
}

// publish sends the event without letting a broker failure affect the request outcome.
func (s *service) publish(ctx context.Context, event ProductEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, *toDto(p))
	}
	return dtos
}
