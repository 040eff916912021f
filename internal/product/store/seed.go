package store

// SeedProducts returns the catalog the service starts with.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "264775d7-017e-4094-8703-a419c9918731",
			Name:        "Laptop Pro X",
			Description: "High-performance laptop for professionals.",
			Price:       1999.99,
			Category:    "Electronics",
			InStock:     true,
		},
		{
			ID:          "1e5e78b3-3a9d-4c31-8608-d21a1b4d00f6",
			Name:        "Organic Coffee Beans",
			Description: "Fair-trade, medium roast coffee.",
			Price:       15.50,
			Category:    "Food & Beverage",
			InStock:     true,
		},
		{
			ID:          "0f1d9a2c-7b8e-4a6f-9c0d-3e5b1f7a4d6c",
			Name:        "Leather Wallet",
			Description: "Slim, genuine leather bifold wallet.",
			Price:       45.00,
			Category:    "Accessories",
			InStock:     false,
		},
	}
}
