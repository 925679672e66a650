package memory

import (
	"context"
	"sort"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación en memoria del puerto StockMovementRepository.
type StockMovementRepo struct {
	store *Store
}

// NewStockMovementRepository construye el adaptador sobre un Store.
func NewStockMovementRepository(store *Store) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

// Append persiste un movimiento de inmediato (uso fuera del ledger: tests).
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if r.store.FailAppend != nil {
		return r.store.FailAppend
	}
	r.store.assignMovementIdentity(movement)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *movement
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

// ListAll lista todos los movimientos, del más reciente al más antiguo.
func (r *StockMovementRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return true }, limit, offset), nil
}

// ListByProduct lista los movimientos de un producto, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.ProductID == productID }, limit, offset), nil
}

func (r *StockMovementRepo) list(match func(*entity.StockMovement) bool, limit, offset int) []*entity.StockMovement {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.store.movements {
		if match(m) {
			cp := *m
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// txMovementRepo repo de movimientos atado a una transacción: Append reserva
// ID y timestamp pero deja el registro en el buffer hasta el commit.
type txMovementRepo struct {
	store *Store
	tx    *txState
}

var _ repository.StockMovementRepository = (*txMovementRepo)(nil)

// Append reserva identidad para el movimiento y lo acumula en la transacción.
func (r *txMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if r.store.FailAppend != nil {
		return r.store.FailAppend
	}
	r.store.assignMovementIdentity(movement)
	cp := *movement
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

// ListAll delega en la vista confirmada del Store.
func (r *txMovementRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return NewStockMovementRepository(r.store).ListAll(ctx, limit, offset)
}

// ListByProduct delega en la vista confirmada del Store.
func (r *txMovementRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error) {
	return NewStockMovementRepository(r.store).ListByProduct(ctx, productID, limit, offset)
}
