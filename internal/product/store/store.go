// Package store provides an interface for product storage operations.
package store

import "context"

// ProductStore is an interface for product storage operations.
// It never validates input and never returns typed failures: absence is reported
// structurally and the caller decides what it means.
type ProductStore interface {
	// List returns a snapshot of all products in insertion order.
	// Returns an empty slice if no products exist.
	List(ctx context.Context) []Product

	// FindByID retrieves a single product by exact id match.
	// The boolean is false if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (Product, bool)

	// Create assigns a fresh UUID to a new product, appends it and returns the stored record.
	Create(ctx context.Context, fields Fields) Product

	// Update merges the non-nil fields of patch over the stored product.
	// The boolean is false if no product exists with the given ID.
	Update(ctx context.Context, id string, patch Patch) (Product, bool)

	// Delete removes a product by its ID and reports whether a removal occurred.
	Delete(ctx context.Context, id string) bool
}

// Product represents a product entity in the store.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// Fields holds the caller-supplied values of a new product.
type Fields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// Patch is a partial update. A nil field keeps its previous value.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

// apply returns p with every non-nil field of patch written over it.
func (patch Patch) apply(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	return p
}
