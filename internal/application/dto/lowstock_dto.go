package dto

import "github.com/shopspring/decimal"

// LowStockItemDTO representa un producto en o por debajo de su umbral mínimo
// dentro del reporte de reposición.
type LowStockItemDTO struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	CategoryName string          `json:"category,omitempty"`
	SupplierName string          `json:"supplier,omitempty"`
	CurrentStock int64           `json:"current_stock"`
	MinimumStock int64           `json:"minimum_stock"`
	Needed       int64           `json:"needed"` // max(0, minimum_stock - current_stock)
	UnitPrice    decimal.Decimal `json:"unit_price"`
}
