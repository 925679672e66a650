package repository

import (
	"context"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para StockMovement (DIP).
// No hay Update ni Delete: los movimientos son inmutables una vez confirmados.
type StockMovementRepository interface {
	// Append persiste un movimiento nuevo y completa ID y OccurredAt
	// asignados por el almacén en el commit.
	Append(ctx context.Context, movement *entity.StockMovement) error
	ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error)
}
