package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria del puerto ProductRepository.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el adaptador sobre un Store.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create persiste un producto nuevo asignándole el siguiente ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextProductID++
	product.ID = r.store.nextProductID
	cp := *product
	r.store.products[cp.ID] = &cp
	return nil
}

// GetByID obtiene una copia del producto, o nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return r.store.copyProduct(p), nil
}

// GetForUpdate fuera de una transacción equivale a GetByID; la semántica de
// lock la aporta el repo atado a TxRunner.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update actualiza un producto. No toca CurrentStock: ese campo solo lo
// escribe UpdateStock dentro de la transacción del ledger.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.products[product.ID]
	if !ok {
		return nil
	}
	stock := existing.CurrentStock
	cp := *product
	cp.CurrentStock = stock
	r.store.products[cp.ID] = &cp
	return nil
}

// UpdateStock escribe el nuevo stock. Fuera del TxRunner solo lo usan los
// tests; el camino real pasa siempre por la transacción del ledger.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID, newStock int64) error {
	if r.store.FailUpdateStock != nil {
		return r.store.FailUpdateStock
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.products[productID]; ok {
		p.CurrentStock = newStock
	}
	return nil
}

// List devuelve todos los productos ordenados por nombre (desempate por id).
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.collect(func(p *entity.Product) bool { return true }), nil
}

// Search busca por palabra clave en nombre, SKU o descripción (case-insensitive).
func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]*entity.Product, error) {
	k := strings.ToLower(keyword)
	match := func(p *entity.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), k) ||
			strings.Contains(strings.ToLower(p.SKU), k) ||
			strings.Contains(strings.ToLower(p.Description), k)
	}
	return r.collect(match), nil
}

// ListLowStock devuelve los productos con CurrentStock <= MinimumStock,
// calculado en vivo sobre el estado actual.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	return r.collect(func(p *entity.Product) bool { return p.IsLowStock() }), nil
}

func (r *ProductRepo) collect(match func(*entity.Product) bool) []*entity.Product {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.store.products {
		if match(p) {
			list = append(list, r.store.copyProduct(p))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.products, id)
	return nil
}

// txProductRepo repo de productos atado a una transacción del TxRunner:
// GetForUpdate toma el lock del producto y UpdateStock escribe al buffer.
type txProductRepo struct {
	*ProductRepo
	tx *txState
}

// GetForUpdate toma el lock del producto (o falla con ErrBusy al vencer el
// ctx) y devuelve su estado actual. El lock se libera al terminar Run.
func (r *txProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	if !r.tx.holdsLock(id) {
		if err := r.store.acquireProduct(ctx, id); err != nil {
			return nil, err
		}
		r.tx.heldLocks = append(r.tx.heldLocks, id)
	}
	return r.ProductRepo.GetByID(ctx, id)
}

// UpdateStock acumula la escritura; se publica solo en el commit.
func (r *txProductRepo) UpdateStock(ctx context.Context, productID, newStock int64) error {
	if r.store.FailUpdateStock != nil {
		return r.store.FailUpdateStock
	}
	r.tx.stockWrites[productID] = newStock
	return nil
}
