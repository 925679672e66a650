package postgres

import (
	"context"
	"fmt"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lista: los movimientos son inmutables.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento nuevo. ID y occurred_at los asigna la base
// en el commit (serial y DEFAULT now()) y se devuelven al caller.
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, direction, quantity, reference, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, occurred_at`
	err := r.q.QueryRow(ctx, query,
		movement.ProductID, movement.Direction, movement.Quantity,
		movement.Reference, movement.Notes,
	).Scan(&movement.ID, &movement.OccurredAt)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

const movementColumns = `
	m.id, m.product_id, m.direction, m.quantity, m.occurred_at,
	COALESCE(m.reference, ''), COALESCE(m.notes, ''), p.name`

// ListAll lista todos los movimientos, del más reciente al más antiguo.
func (r *StockMovementRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements m
		JOIN products p ON m.product_id = p.id
		ORDER BY m.occurred_at DESC, m.id DESC
		LIMIT $1 OFFSET $2`
	return r.queryMovements(ctx, query, limit, offset)
}

// ListByProduct lista los movimientos de un producto, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements m
		JOIN products p ON m.product_id = p.id
		WHERE m.product_id = $1
		ORDER BY m.occurred_at DESC, m.id DESC
		LIMIT $2 OFFSET $3`
	return r.queryMovements(ctx, query, productID, limit, offset)
}

func (r *StockMovementRepo) queryMovements(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity,
			&m.OccurredAt, &m.Reference, &m.Notes, &m.ProductName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
