package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/smartstock/smartstock-api/internal/domain"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productJoinedColumns = `
	p.id, p.name, p.description, p.sku, p.category_id, p.supplier_id,
	p.unit_price, p.current_stock, p.minimum_stock, p.created_at, p.updated_at,
	COALESCE(c.name, ''), COALESCE(s.name, '')`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN suppliers s ON p.supplier_id = s.id`

func scanProductJoined(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.SKU, &p.CategoryID, &p.SupplierID,
		&p.UnitPrice, &p.CurrentStock, &p.MinimumStock, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.SupplierName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. El ID lo asigna la base (serial).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, description, sku, category_id, supplier_id, unit_price, current_stock, minimum_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.Description, product.SKU, product.CategoryID, product.SupplierID,
		product.UnitPrice, product.CurrentStock, product.MinimumStock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría o proveedor inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con nombres de categoría y proveedor.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT ` + productJoinedColumns + productJoins + ` WHERE p.id = $1`
	p, err := scanProductJoined(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la
// transacción (SELECT FOR UPDATE). Sin JOINs: el lock es solo sobre products.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	query := `
		SELECT id, name, description, sku, category_id, supplier_id,
		       unit_price, current_stock, minimum_stock, created_at, updated_at
		FROM products WHERE id = $1
		FOR UPDATE`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.SKU, &p.CategoryID, &p.SupplierID,
		&p.UnitPrice, &p.CurrentStock, &p.MinimumStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return &p, nil
}

// Update actualiza un producto existente. No toca current_stock: ese campo
// solo lo escribe UpdateStock dentro de la transacción del ledger.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, sku = $4, category_id = $5,
		       supplier_id = $6, unit_price = $7, minimum_stock = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.SKU, product.CategoryID,
		product.SupplierID, product.UnitPrice, product.MinimumStock, product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría o proveedor inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock escribe el nuevo stock calculado por el motor de movimientos.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID, newStock int64) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = $2, updated_at = now() WHERE id = $1`,
		productID, newStock,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// List lista todos los productos ordenados por nombre (desempate por id).
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productJoinedColumns + productJoins + ` ORDER BY p.name, p.id`
	return r.queryProducts(ctx, query)
}

// Search busca por palabra clave en nombre, SKU o descripción (case-insensitive).
func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]*entity.Product, error) {
	query := `SELECT ` + productJoinedColumns + productJoins + `
		WHERE p.name ILIKE $1 OR p.sku ILIKE $1 OR p.description ILIKE $1
		ORDER BY p.name, p.id`
	return r.queryProducts(ctx, query, "%"+keyword+"%")
}

// ListLowStock lista los productos en o por debajo de su mínimo, calculado
// en vivo sobre products (sin vista pre-agregada que pueda divergir).
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productJoinedColumns + productJoins + `
		WHERE p.current_stock <= p.minimum_stock
		ORDER BY p.name, p.id`
	return r.queryProducts(ctx, query)
}

func (r *ProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProductJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID. Falla con ErrConflict si tiene movimientos.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el producto tiene movimientos registrados", domain.ErrConflict)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
