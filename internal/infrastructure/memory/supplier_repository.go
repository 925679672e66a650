package memory

import (
	"context"
	"sort"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación en memoria del puerto SupplierRepository.
type SupplierRepo struct {
	store *Store
}

// NewSupplierRepository construye el adaptador sobre un Store.
func NewSupplierRepository(store *Store) *SupplierRepo {
	return &SupplierRepo{store: store}
}

// Create persiste un proveedor nuevo asignándole el siguiente ID.
func (r *SupplierRepo) Create(ctx context.Context, supplier *entity.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextSupplierID++
	supplier.ID = r.store.nextSupplierID
	cp := *supplier
	r.store.suppliers[cp.ID] = &cp
	return nil
}

// GetByID obtiene un proveedor, o nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Update actualiza un proveedor existente.
func (r *SupplierRepo) Update(ctx context.Context, supplier *entity.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.suppliers[supplier.ID]; ok {
		cp := *supplier
		r.store.suppliers[cp.ID] = &cp
	}
	return nil
}

// List lista todos los proveedores ordenados por nombre.
func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var list []*entity.Supplier
	for _, s := range r.store.suppliers {
		cp := *s
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// Delete elimina un proveedor y desliga los productos que lo referencian.
func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.suppliers, id)
	for _, p := range r.store.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
		}
	}
	return nil
}
