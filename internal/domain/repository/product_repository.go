package repository

import (
	"context"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// UpdateStock es de uso exclusivo del motor de movimientos, dentro de su
// transacción; ningún otro caso de uso debe invocarlo.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la
	// transacción en curso (SELECT ... FOR UPDATE o equivalente).
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock escribe el nuevo stock calculado por el ledger.
	UpdateStock(ctx context.Context, productID, newStock int64) error
	List(ctx context.Context) ([]*entity.Product, error)
	Search(ctx context.Context, keyword string) ([]*entity.Product, error)
	// ListLowStock devuelve los productos con current_stock <= minimum_stock,
	// ordenados por nombre ascendente (desempate por id ascendente).
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) error
}
