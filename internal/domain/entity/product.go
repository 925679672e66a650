package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// CurrentStock solo se modifica a través del motor de movimientos (ledger);
// el CRUD de productos nunca escribe ese campo directamente.
type Product struct {
	ID           int64
	Name         string          // obligatorio, no vacío
	Description  string
	SKU          string          // opcional, no único según el esquema
	CategoryID   *int64          // opcional
	SupplierID   *int64          // opcional
	UnitPrice    decimal.Decimal // precio unitario, nunca negativo
	CurrentStock int64           // invariante: >= 0
	MinimumStock int64           // umbral de reposición, >= 0
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Nombres resueltos por JOIN en listados (no persisten en products).
	CategoryName string
	SupplierName string
}

// IsLowStock indica si el producto está en o por debajo de su umbral mínimo.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinimumStock
}

// NeededStock devuelve cuántas unidades faltan para alcanzar el mínimo (nunca negativo).
func (p *Product) NeededStock() int64 {
	if n := p.MinimumStock - p.CurrentStock; n > 0 {
		return n
	}
	return 0
}
