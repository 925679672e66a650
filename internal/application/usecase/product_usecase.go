package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartstock/smartstock-api/internal/application/dto"
	"github.com/smartstock/smartstock-api/internal/domain"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. CurrentStock se maneja
// vía movimientos: Create puede fijar el stock de apertura, Update nunca lo toca.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

func validateProductFields(name string, price decimal.Decimal, stock, minimum int64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	if stock < 0 || minimum < 0 {
		return fmt.Errorf("%w: stock y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// Create crea un nuevo producto con su stock de apertura.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductDTO, error) {
	if err := validateProductFields(in.Name, in.UnitPrice, in.InitialStock, in.MinimumStock); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		SKU:          in.SKU,
		CategoryID:   in.CategoryID,
		SupplierID:   in.SupplierID,
		UnitPrice:    in.UnitPrice,
		CurrentStock: in.InitialStock,
		MinimumStock: in.MinimumStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// GetByID obtiene un producto por ID. Devuelve ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductDTO, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// Update actualiza un producto. No modifica CurrentStock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	if err := validateProductFields(in.Name, in.UnitPrice, 0, in.MinimumStock); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.SKU = in.SKU
	product.CategoryID = in.CategoryID
	product.SupplierID = in.SupplierID
	product.UnitPrice = in.UnitPrice
	product.MinimumStock = in.MinimumStock
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// List devuelve todos los productos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductDTO, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ProductsFromEntities(products), nil
}

// Search busca productos por palabra clave en nombre, SKU o descripción.
func (uc *ProductUseCase) Search(ctx context.Context, keyword string) ([]dto.ProductDTO, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return uc.List(ctx)
	}
	products, err := uc.repo.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return dto.ProductsFromEntities(products), nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}
