// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria, con la misma disciplina transaccional que el adaptador PostgreSQL:
// lock por producto, escrituras del ledger confirmadas de forma atómica y
// rollback completo ante cualquier fallo. Se usa en tests y en modo demo
// (STORAGE=memory), donde no hay base de datos disponible.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smartstock/smartstock-api/internal/domain"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
)

// Store estado compartido en memoria. Las lecturas toman RLock (snapshot
// consistente); las escrituras confirmadas toman Lock. El lock por producto
// (canal de capacidad 1) serializa las secciones críticas del ledger.
type Store struct {
	mu         sync.RWMutex
	products   map[int64]*entity.Product
	movements  []*entity.StockMovement
	categories map[int64]*entity.Category
	suppliers  map[int64]*entity.Supplier

	nextProductID  int64
	nextMovementID int64
	nextCategoryID int64
	nextSupplierID int64

	lockMu sync.Mutex
	locks  map[int64]chan struct{}

	// Hooks de inyección de fallos para tests de rollback. Si no son nil,
	// la operación correspondiente falla con ese error.
	FailAppend      error
	FailUpdateStock error
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[int64]*entity.Product),
		categories: make(map[int64]*entity.Category),
		suppliers:  make(map[int64]*entity.Supplier),
		locks:      make(map[int64]chan struct{}),
	}
}

// productLock devuelve el canal-lock del producto, creándolo si no existe.
func (s *Store) productLock(productID int64) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	ch, ok := s.locks[productID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[productID] = ch
	}
	return ch
}

// acquireProduct toma el lock del producto o falla con ErrBusy si el ctx
// vence antes. Dos productos distintos usan locks distintos y no se bloquean
// entre sí.
func (s *Store) acquireProduct(ctx context.Context, productID int64) error {
	select {
	case s.productLock(productID) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrBusy, ctx.Err())
	}
}

// releaseProduct libera el lock del producto.
func (s *Store) releaseProduct(productID int64) {
	<-s.productLock(productID)
}

// copyProduct devuelve una copia con los nombres de categoría y proveedor
// resueltos. Llamar con s.mu tomado.
func (s *Store) copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			cp.CategoryName = c.Name
		}
	}
	if p.SupplierID != nil {
		if sp, ok := s.suppliers[*p.SupplierID]; ok {
			cp.SupplierName = sp.Name
		}
	}
	return &cp
}

// assignMovementIdentity reserva id y timestamp para un movimiento. El
// registro en sí solo se publica cuando la transacción confirma.
func (s *Store) assignMovementIdentity(m *entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMovementID++
	m.ID = s.nextMovementID
	m.OccurredAt = time.Now()
	if p, ok := s.products[m.ProductID]; ok {
		m.ProductName = p.Name
	}
}
