package handler

import (
	"github.com/abgdnv/productcatalog/internal/platform/web"
	"github.com/abgdnv/productcatalog/internal/product/service"
)

// toCreateDto reads a payload that has already passed creation validation.
func toCreateDto(p web.Payload) service.ProductCreateDto {
	var dto service.ProductCreateDto
	dto.Name, _ = p.Fields["name"].(string)
	dto.Description, _ = p.Fields["description"].(string)
	dto.Price, _ = p.Fields["price"].(float64)
	dto.Category, _ = p.Fields["category"].(string)
	dto.InStock, _ = p.Fields["inStock"].(bool)
	return dto
}

// toUpdateDto reads a payload that has already passed update validation.
// Absent fields stay nil.
func toUpdateDto(p web.Payload) service.ProductUpdateDto {
	var dto service.ProductUpdateDto
	if v, ok := p.Fields["name"].(string); ok {
		dto.Name = &v
	}
	if v, ok := p.Fields["description"].(string); ok {
		dto.Description = &v
	}
	if v, ok := p.Fields["price"].(float64); ok {
		dto.Price = &v
	}
	if v, ok := p.Fields["category"].(string); ok {
		dto.Category = &v
	}
	if v, ok := p.Fields["inStock"].(bool); ok {
		dto.InStock = &v
	}
	return dto
}
