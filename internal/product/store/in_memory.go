package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// inMemory implements ProductStore using an ordered in-memory slice.
// Mutations take the write lock; reads take the read lock and return copies.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
	newID    func() string
}

// NewInMemoryStore creates a new instance of ProductStore holding the given products.
func NewInMemoryStore(seed ...Product) ProductStore {
	return &inMemory{
		products: slices.Clone(seed),
		newID:    uuid.NewString,
	}
}

// List returns a copy of all products.
func (s *inMemory) List(_ context.Context) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false
	}
	return s.products[i], true
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, fields Fields) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:          s.newID(),
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		InStock:     fields.InStock,
	}
	s.products = append(s.products, product)

	return product
}

// Update merges patch into the product with the given ID.
func (s *inMemory) Update(_ context.Context, id string, patch Patch) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false
	}
	s.products[i] = patch.apply(s.products[i])
	return s.products[i], true
}

// Delete deletes a product by its ID.
func (s *inMemory) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.products = slices.Delete(s.products, i, i+1)
	return true
}

// indexOf must be called with the lock held.
func (s *inMemory) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool {
		return p.ID == id
	})
}
