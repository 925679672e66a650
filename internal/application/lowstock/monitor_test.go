package lowstock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstock/smartstock-api/internal/application/lowstock"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/infrastructure/memory"
)

func seed(t *testing.T, repo *memory.ProductRepo, name string, stock, minimum int64) int64 {
	t.Helper()
	p := &entity.Product{
		Name:         name,
		UnitPrice:    decimal.NewFromInt(5),
		CurrentStock: stock,
		MinimumStock: minimum,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p.ID
}

func TestListLowStock_FiltroYOrden(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewProductRepository(store)
	uc := lowstock.NewMonitorUseCase(repo)

	seed(t, repo, "Zapatos", 2, 5)   // bajo: faltan 3
	seed(t, repo, "Alfombra", 10, 3) // no bajo
	seed(t, repo, "Mesa", 4, 4)      // en el límite: cuenta como bajo
	seed(t, repo, "Camisa", 0, 2)    // bajo: faltan 2

	items, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Orden por nombre ascendente
	assert.Equal(t, "Camisa", items[0].Name)
	assert.Equal(t, "Mesa", items[1].Name)
	assert.Equal(t, "Zapatos", items[2].Name)

	// needed = minimum - current cuando es positivo
	assert.Equal(t, int64(2), items[0].Needed)
	assert.Equal(t, int64(0), items[1].Needed, "en el límite no falta nada")
	assert.Equal(t, int64(3), items[2].Needed)
}

func TestListLowStock_EnElLimiteCuentaComoBajo(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewProductRepository(store)
	uc := lowstock.NewMonitorUseCase(repo)

	seed(t, repo, "Silla", 4, 4)
	seed(t, repo, "Lampara", 5, 4)

	items, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Silla", items[0].Name)
}

func TestListLowStock_SinProductosBajos(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewProductRepository(store)
	uc := lowstock.NewMonitorUseCase(repo)

	seed(t, repo, "Cargador", 9, 1)

	items, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items, "lista vacía es un resultado válido, no un error")
}

func TestListLowStock_DesempatePorID(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewProductRepository(store)
	uc := lowstock.NewMonitorUseCase(repo)

	first := seed(t, repo, "Repuesto", 0, 1)
	second := seed(t, repo, "Repuesto", 0, 1)

	items, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].ProductID)
	assert.Equal(t, second, items[1].ProductID)
}
