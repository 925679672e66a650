package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
// InitialStock solo aplica en la creación; después el stock se modifica
// únicamente vía movimientos.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	SupplierID   *int64          `json:"supplier_id,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	InitialStock int64           `json:"initial_stock"`
	MinimumStock int64           `json:"minimum_stock"`
}

// UpdateProductRequest body para PUT /api/products/:id.
// No incluye stock: ese campo pertenece al motor de movimientos.
type UpdateProductRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	SupplierID   *int64          `json:"supplier_id,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinimumStock int64           `json:"minimum_stock"`
}

// ProductDTO representación de un producto en respuestas HTTP.
type ProductDTO struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	SupplierID   *int64          `json:"supplier_id,omitempty"`
	CategoryName string          `json:"category,omitempty"`
	SupplierName string          `json:"supplier,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrentStock int64           `json:"current_stock"`
	MinimumStock int64           `json:"minimum_stock"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductFromEntity convierte la entidad al DTO de respuesta.
func ProductFromEntity(p *entity.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		SKU:          p.SKU,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		CategoryName: p.CategoryName,
		SupplierName: p.SupplierName,
		UnitPrice:    p.UnitPrice,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		LowStock:     p.IsLowStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProductsFromEntities convierte un listado de entidades a DTOs.
func ProductsFromEntities(list []*entity.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, ProductFromEntity(p))
	}
	return out
}
