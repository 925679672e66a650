package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstock/smartstock-api/internal/application/ledger"
	"github.com/smartstock/smartstock-api/internal/domain"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
	"github.com/smartstock/smartstock-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type ledgerFixture struct {
	store    *memory.Store
	apply    *ledger.ApplyMovementUseCase
	products *memory.ProductRepo
	moves    *memory.StockMovementRepo
}

func newFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	return &ledgerFixture{
		store:    store,
		apply:    ledger.NewApplyMovementUseCase(memory.NewTxRunner(store)),
		products: memory.NewProductRepository(store),
		moves:    memory.NewStockMovementRepository(store),
	}
}

// seedProduct crea un producto con el stock y mínimo indicados.
func (f *ledgerFixture) seedProduct(t *testing.T, name string, stock, minimum int64) int64 {
	t.Helper()
	p := &entity.Product{
		Name:         name,
		UnitPrice:    decimal.NewFromInt(10),
		CurrentStock: stock,
		MinimumStock: minimum,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func (f *ledgerFixture) currentStock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *ledgerFixture) movementCount(t *testing.T, productID int64) int {
	t.Helper()
	list, err := f.moves.ListByProduct(context.Background(), productID, 0, 0)
	require.NoError(t, err)
	return len(list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario de referencia: stock=10, mínimo=5
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EscenarioEntradaYSalidas(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Tornillos M4", 10, 5)
	ctx := context.Background()

	// IN 5 → stock 15, no bajo
	res, err := f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: entity.DirectionIN, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.NewStock)
	assert.False(t, res.LowStock)
	assert.Equal(t, int64(0), res.Needed)
	assert.Equal(t, entity.DirectionIN, res.Movement.Direction)
	assert.Equal(t, int64(5), res.Movement.Quantity)
	assert.NotZero(t, res.Movement.ID, "el ID lo asigna el almacén en el commit")
	assert.False(t, res.Movement.OccurredAt.IsZero())

	// OUT 20 → insuficiente, stock intacto
	_, err = f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: entity.DirectionOUT, Quantity: 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(15), insufficient.Available, "el error debe llevar la cantidad disponible")
	assert.Equal(t, int64(15), f.currentStock(t, id), "un rechazo no cambia el stock")

	// OUT 12 → stock 3, bajo, faltan 2
	res, err = f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: entity.DirectionOUT, Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.NewStock)
	assert.True(t, res.LowStock)
	assert.Equal(t, int64(2), res.Needed)

	// Exactamente un movimiento por apply exitoso
	assert.Equal(t, 2, f.movementCount(t, id))
}

func TestApply_ConservacionDeStock(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Cable UTP", 100, 10)
	ctx := context.Background()

	type step struct {
		direction string
		quantity  int64
	}
	steps := []step{
		{entity.DirectionIN, 30}, {entity.DirectionOUT, 25}, {entity.DirectionOUT, 50},
		{entity.DirectionIN, 7}, {entity.DirectionOUT, 12}, {entity.DirectionIN, 1},
	}
	expected := int64(100)
	for _, s := range steps {
		_, err := f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: s.direction, Quantity: s.quantity})
		require.NoError(t, err)
		if s.direction == entity.DirectionIN {
			expected += s.quantity
		} else {
			expected -= s.quantity
		}
	}
	// stock final == inicial + sum(IN) - sum(OUT) sobre los movimientos confirmados
	assert.Equal(t, expected, f.currentStock(t, id))
	assert.Equal(t, len(steps), f.movementCount(t, id))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Tuercas", 10, 2)
	ctx := context.Background()

	for _, q := range []int64{0, -3} {
		_, err := f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: entity.DirectionIN, Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %d debe rechazarse", q)
	}
	assert.Equal(t, int64(10), f.currentStock(t, id))
	assert.Equal(t, 0, f.movementCount(t, id))
}

func TestApply_DireccionInvalida(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Arandelas", 10, 2)

	_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{ProductID: id, Direction: "TRANSFER", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{ProductID: 999, Direction: entity.DirectionIN, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: N salidas contra stock para k
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_SalidasConcurrentes(t *testing.T) {
	const (
		n = 20
		k = 5
		q = int64(10)
	)
	f := newFixture(t)
	id := f.seedProduct(t, "Disco SSD", k*q, 0)

	var wg sync.WaitGroup
	var successes, insufficient int32
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{
				ProductID: id, Direction: entity.DirectionOUT, Quantity: q,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, k, successes, "solo k salidas caben en el stock")
	assert.EqualValues(t, n-k, insufficient)
	assert.Equal(t, int64(0), f.currentStock(t, id))
	assert.Equal(t, k, f.movementCount(t, id))
}

func TestApply_ProductosDistintosNoSeBloquean(t *testing.T) {
	f := newFixture(t)
	a := f.seedProduct(t, "Producto A", 50, 0)
	b := f.seedProduct(t, "Producto B", 50, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, id := range []int64{a, b} {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{
					ProductID: id, Direction: entity.DirectionOUT, Quantity: 5,
				})
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	assert.Equal(t, int64(0), f.currentStock(t, a))
	assert.Equal(t, int64(0), f.currentStock(t, b))
}

// ──────────────────────────────────────────────────────────────────────────────
// Busy: lock retenido por otra transacción
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_LockOcupadoRetornaBusy(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Monitor", 10, 0)

	holding := make(chan struct{})
	releaseLock := make(chan struct{})
	go func() {
		// Transacción que retiene el lock del producto hasta que se le indique.
		_ = memory.NewTxRunner(f.store).Run(context.Background(), func(
			productRepo repository.ProductRepository,
			movementRepo repository.StockMovementRepository,
		) error {
			if _, err := productRepo.GetForUpdate(context.Background(), id); err != nil {
				return err
			}
			close(holding)
			<-releaseLock
			return nil
		})
	}()
	<-holding
	defer close(releaseLock)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.apply.Apply(ctx, ledger.ApplyInput{ProductID: id, Direction: entity.DirectionOUT, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, int64(10), f.currentStock(t, id), "un timeout no produce estado parcial")
	assert.Equal(t, 0, f.movementCount(t, id))
}

// ──────────────────────────────────────────────────────────────────────────────
// Inyección de fallos: rollback total
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_FalloEntreEscriturasHaceRollback(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Teclado", 10, 2)

	// Falla la actualización de stock después de insertar el movimiento:
	// ninguna de las dos escrituras debe quedar visible.
	f.store.FailUpdateStock = errors.New("disco lleno")
	_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{
		ProductID: id, Direction: entity.DirectionIN, Quantity: 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), f.currentStock(t, id), "el stock queda como antes del fallo")
	assert.Equal(t, 0, f.movementCount(t, id), "el movimiento no queda visible")

	// Reintento tras limpiar el fallo: la operación es segura de reintentar.
	f.store.FailUpdateStock = nil
	res, err := f.apply.Apply(context.Background(), ledger.ApplyInput{
		ProductID: id, Direction: entity.DirectionIN, Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.NewStock)
}

func TestApply_FalloAlInsertarMovimiento(t *testing.T) {
	f := newFixture(t)
	id := f.seedProduct(t, "Mouse", 8, 2)

	f.store.FailAppend = errors.New("tabla corrupta")
	_, err := f.apply.Apply(context.Background(), ledger.ApplyInput{
		ProductID: id, Direction: entity.DirectionOUT, Quantity: 3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, int64(8), f.currentStock(t, id))
	assert.Equal(t, 0, f.movementCount(t, id))
}
