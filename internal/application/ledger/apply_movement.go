package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartstock/smartstock-api/internal/domain"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// ApplyMovementUseCase es la única autoridad para cambiar el stock de un
// producto y el único productor de registros StockMovement. Aplica cada
// movimiento (IN/OUT) de forma transaccional con bloqueo por producto.
type ApplyMovementUseCase struct {
	txRunner TxRunner
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(txRunner TxRunner) *ApplyMovementUseCase {
	return &ApplyMovementUseCase{txRunner: txRunner}
}

// ApplyInput entrada para aplicar un movimiento de stock.
type ApplyInput struct {
	ProductID int64
	Direction string // entity.DirectionIN o entity.DirectionOUT
	Quantity  int64  // estrictamente > 0
	Reference string
	Notes     string
}

// ApplyResult resultado de un movimiento confirmado. Incluye el movimiento
// con su ID y timestamp asignados, el stock resultante y el estado de stock
// bajo derivado, para que el caller refresque sus vistas sin una segunda
// lectura.
type ApplyResult struct {
	Movement *entity.StockMovement
	NewStock int64
	LowStock bool
	Needed   int64 // unidades que faltan para alcanzar el mínimo (0 si no aplica)
}

// Apply valida el movimiento y lo confirma dentro de una transacción:
// bloquea la fila del producto, verifica que una salida no deje el stock
// negativo, inserta el movimiento y escribe el nuevo stock. Ambas escrituras
// se confirman o se revierten como una unidad.
//
// Errores: domain.ErrInvalidInput (cantidad o dirección inválida),
// domain.ErrNotFound (producto inexistente), *domain.InsufficientStockError
// (salida mayor al disponible, con la cantidad disponible),
// domain.ErrBusy (no se obtuvo el lock dentro del plazo) y
// domain.ErrStorage (fallo de persistencia, con rollback completo).
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !entity.ValidDirection(input.Direction) {
		return nil, fmt.Errorf("%w: dirección desconocida %q", domain.ErrInvalidInput, input.Direction)
	}
	if input.ProductID <= 0 {
		return nil, fmt.Errorf("%w: product_id inválido", domain.ErrInvalidInput)
	}

	var result *ApplyResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		// Sección crítica por producto: lectura, verificación y escritura
		// del stock no se entrelazan con otro movimiento del mismo producto.
		product, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		delta := input.Quantity
		if input.Direction == entity.DirectionOUT {
			delta = -delta
		}
		newStock := product.CurrentStock + delta
		if newStock < 0 {
			return &domain.InsufficientStockError{
				ProductID: product.ID,
				Requested: input.Quantity,
				Available: product.CurrentStock,
			}
		}

		movement := &entity.StockMovement{
			ProductID: product.ID,
			Direction: input.Direction,
			Quantity:  input.Quantity,
			Reference: input.Reference,
			Notes:     input.Notes,
		}
		// Primero el movimiento, después el stock; la transacción garantiza
		// que ninguna de las dos escrituras quede visible sin la otra.
		if err := movementRepo.Append(ctx, movement); err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
			return err
		}

		product.CurrentStock = newStock
		result = &ApplyResult{
			Movement: movement,
			NewStock: newStock,
			LowStock: product.IsLowStock(),
			Needed:   product.NeededStock(),
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// classify separa los resultados de negocio esperados de los fallos de
// infraestructura: lo que no es error de dominio se reporta como ErrStorage
// (o ErrBusy si fue un timeout de lock / cancelación).
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrBusy):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", domain.ErrBusy, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
}
