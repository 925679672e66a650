package memory

import (
	"context"
	"sort"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria del puerto CategoryRepository.
type CategoryRepo struct {
	store *Store
}

// NewCategoryRepository construye el adaptador sobre un Store.
func NewCategoryRepository(store *Store) *CategoryRepo {
	return &CategoryRepo{store: store}
}

// Create persiste una categoría nueva asignándole el siguiente ID.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextCategoryID++
	category.ID = r.store.nextCategoryID
	cp := *category
	r.store.categories[cp.ID] = &cp
	return nil
}

// GetByID obtiene una categoría, o nil si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// Update actualiza una categoría existente.
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[category.ID]; ok {
		cp := *category
		r.store.categories[cp.ID] = &cp
	}
	return nil
}

// List lista todas las categorías ordenadas por nombre.
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var list []*entity.Category
	for _, c := range r.store.categories {
		cp := *c
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

// Delete elimina una categoría y desliga los productos que la referencian.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.categories, id)
	for _, p := range r.store.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}
