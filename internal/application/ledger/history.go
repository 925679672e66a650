package ledger

import (
	"context"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// HistoryUseCase consulta el historial de movimientos (solo lectura, fuera
// de la sección crítica del motor).
type HistoryUseCase struct {
	movementRepo repository.StockMovementRepository
}

// NewHistoryUseCase construye el caso de uso de historial.
func NewHistoryUseCase(movementRepo repository.StockMovementRepository) *HistoryUseCase {
	return &HistoryUseCase{movementRepo: movementRepo}
}

// ListAll devuelve todos los movimientos, del más reciente al más antiguo.
func (uc *HistoryUseCase) ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListAll(ctx, limit, offset)
}

// ListByProduct devuelve los movimientos de un producto, del más reciente al más antiguo.
func (uc *HistoryUseCase) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByProduct(ctx, productID, limit, offset)
}
