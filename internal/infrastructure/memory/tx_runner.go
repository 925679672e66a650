package memory

import (
	"context"
	"time"

	"github.com/smartstock/smartstock-api/internal/application/ledger"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta el callback del ledger contra el Store con semántica
// transaccional: las escrituras se acumulan en un buffer y se publican todas
// juntas solo si fn termina sin error. El lock por producto se toma en
// GetForUpdate y se libera al salir de Run, con lo que la sección crítica
// cubre lectura, verificación y escritura.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre un Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// txState escrituras pendientes y locks tomados por una transacción.
type txState struct {
	store       *Store
	heldLocks   []int64
	movements   []*entity.StockMovement
	stockWrites map[int64]int64
}

func (t *txState) holdsLock(productID int64) bool {
	for _, id := range t.heldLocks {
		if id == productID {
			return true
		}
	}
	return false
}

// commit publica las escrituras acumuladas como una sola unidad.
func (t *txState) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	now := time.Now()
	t.store.movements = append(t.store.movements, t.movements...)
	for productID, newStock := range t.stockWrites {
		if p, ok := t.store.products[productID]; ok {
			p.CurrentStock = newStock
			p.UpdatedAt = now
		}
	}
}

// release libera los locks de producto en orden inverso.
func (t *txState) release() {
	for i := len(t.heldLocks) - 1; i >= 0; i-- {
		t.store.releaseProduct(t.heldLocks[i])
	}
}

// Run ejecuta fn con repositorios atados a la transacción. Si fn devuelve un
// error, el buffer se descarta y el Store queda exactamente como antes.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	tx := &txState{store: r.store, stockWrites: make(map[int64]int64)}
	defer tx.release()

	productRepo := &txProductRepo{ProductRepo: NewProductRepository(r.store), tx: tx}
	movementRepo := &txMovementRepo{store: r.store, tx: tx}

	if err := fn(productRepo, movementRepo); err != nil {
		return err
	}
	tx.commit()
	return nil
}
