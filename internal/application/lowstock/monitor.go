package lowstock

import (
	"context"

	"github.com/smartstock/smartstock-api/internal/application/dto"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// MonitorUseCase genera el reporte de productos con stock bajo. Es una vista
// derivada de solo lectura: se calcula siempre en vivo sobre el estado actual
// de products, sin tabla pre-agregada que pueda divergir del stock real.
type MonitorUseCase struct {
	productRepo repository.ProductRepository
}

// NewMonitorUseCase construye el monitor de stock bajo.
func NewMonitorUseCase(productRepo repository.ProductRepository) *MonitorUseCase {
	return &MonitorUseCase{productRepo: productRepo}
}

// ListLowStock devuelve los productos con current_stock <= minimum_stock,
// ordenados por nombre ascendente (desempate por id), con la cantidad que
// falta para volver al mínimo. Lista vacía es un resultado válido.
func (uc *MonitorUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		items = append(items, dto.LowStockItemDTO{
			ProductID:    p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			CategoryName: p.CategoryName,
			SupplierName: p.SupplierName,
			CurrentStock: p.CurrentStock,
			MinimumStock: p.MinimumStock,
			Needed:       p.NeededStock(),
			UnitPrice:    p.UnitPrice,
		})
	}
	return items, nil
}
