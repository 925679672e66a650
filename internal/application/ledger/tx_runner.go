package ledger

import (
	"context"

	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando
// repositorios atados a esa transacción. Garantiza la atomicidad del motor de
// movimientos: inserción del movimiento y actualización del stock se
// confirman juntas o se revierten juntas.
//
// La implementación debe serializar las transacciones que tocan el mismo
// producto (lock de fila, mutex por producto o aislamiento serializable) y
// devolver domain.ErrBusy si no consigue el lock dentro del plazo del ctx.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}
