package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstock/smartstock-api/internal/application/dto"
	"github.com/smartstock/smartstock-api/internal/application/ledger"
	"github.com/smartstock/smartstock-api/internal/application/lowstock"
	"github.com/smartstock/smartstock-api/internal/application/usecase"
	"github.com/smartstock/smartstock-api/internal/domain/entity"
	"github.com/smartstock/smartstock-api/internal/infrastructure/memory"
	apihttp "github.com/smartstock/smartstock-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app      *fiber.App
	store    *memory.Store
	products *memory.ProductRepo
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	movementRepo := memory.NewStockMovementRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	supplierRepo := memory.NewSupplierRepository(store)
	txRunner := memory.NewTxRunner(store)

	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		SupplierUC: usecase.NewSupplierUseCase(supplierRepo),
		ProductUC:  usecase.NewProductUseCase(productRepo),
		ApplyUC:    ledger.NewApplyMovementUseCase(txRunner),
		HistoryUC:  ledger.NewHistoryUseCase(movementRepo),
		LowStockUC: lowstock.NewMonitorUseCase(productRepo),
	})
	return &apiFixture{app: app, store: store, products: productRepo}
}

func (f *apiFixture) seedProduct(t *testing.T, name string, stock, minimum int64) int64 {
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

func (f *apiFixture) postJSON(t *testing.T, path string, body any) *nethttp.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(nethttp.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (f *apiFixture) get(t *testing.T, path string) *nethttp.Response {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest(nethttp.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *nethttp.Response) T {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/inventory/movements
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_EntradaOK(t *testing.T) {
	f := newAPI(t)
	id := f.seedProduct(t, "Taladro", 10, 5)

	resp := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: id, Direction: entity.DirectionIN, Quantity: 5, Reference: "PO-001",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeJSON[dto.ApplyMovementResponse](t, resp)
	assert.Equal(t, int64(15), body.NewStock)
	assert.False(t, body.LowStock)
	assert.Equal(t, entity.DirectionIN, body.Movement.Direction)
	assert.Equal(t, int64(5), body.Movement.Quantity)
	assert.Equal(t, "PO-001", body.Movement.Reference)
	assert.NotZero(t, body.Movement.ID)
}

func TestApplyMovement_SalidaDejaStockBajo(t *testing.T) {
	f := newAPI(t)
	id := f.seedProduct(t, "Sierra", 10, 5)

	resp := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: id, Direction: entity.DirectionOUT, Quantity: 7,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeJSON[dto.ApplyMovementResponse](t, resp)
	assert.Equal(t, int64(3), body.NewStock)
	assert.True(t, body.LowStock)
	assert.Equal(t, int64(2), body.Needed)
}

func TestApplyMovement_StockInsuficiente(t *testing.T) {
	f := newAPI(t)
	id := f.seedProduct(t, "Lijadora", 3, 1)

	resp := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: id, Direction: entity.DirectionOUT, Quantity: 10,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Message, "disponible 3", "el mensaje incluye la cantidad disponible")
}

func TestApplyMovement_ValidacionYNotFound(t *testing.T) {
	f := newAPI(t)
	id := f.seedProduct(t, "Fresadora", 10, 2)

	cases := []struct {
		name   string
		req    dto.ApplyMovementRequest
		status int
		code   string
	}{
		{"cantidad cero", dto.ApplyMovementRequest{ProductID: id, Direction: entity.DirectionIN, Quantity: 0}, fiber.StatusBadRequest, "VALIDATION"},
		{"cantidad negativa", dto.ApplyMovementRequest{ProductID: id, Direction: entity.DirectionOUT, Quantity: -5}, fiber.StatusBadRequest, "VALIDATION"},
		{"dirección inválida", dto.ApplyMovementRequest{ProductID: id, Direction: "SIDEWAYS", Quantity: 1}, fiber.StatusBadRequest, "VALIDATION"},
		{"producto inexistente", dto.ApplyMovementRequest{ProductID: 9999, Direction: entity.DirectionIN, Quantity: 1}, fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.postJSON(t, "/api/inventory/movements", tc.req)
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeJSON[dto.ErrorResponse](t, resp)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

type movementListBody struct {
	Total     int               `json:"total"`
	Movements []dto.MovementDTO `json:"movements"`
}

func TestListMovements_SoloConfirmados(t *testing.T) {
	f := newAPI(t)
	id := f.seedProduct(t, "Compresor", 10, 2)

	ok := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: id, Direction: entity.DirectionIN, Quantity: 4,
	})
	require.Equal(t, fiber.StatusCreated, ok.StatusCode)
	rejected := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: id, Direction: entity.DirectionOUT, Quantity: 100,
	})
	require.Equal(t, fiber.StatusConflict, rejected.StatusCode)

	resp := f.get(t, fmt.Sprintf("/api/products/%d/movements", id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON[movementListBody](t, resp)
	// El movimiento rechazado no aparece en el historial.
	require.Equal(t, 1, body.Total)
	assert.Equal(t, entity.DirectionIN, body.Movements[0].Direction)
	assert.Equal(t, int64(4), body.Movements[0].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/inventory/low-stock
// ──────────────────────────────────────────────────────────────────────────────

type lowStockBody struct {
	Total    int                   `json:"total"`
	Products []dto.LowStockItemDTO `json:"products"`
}

func TestListLowStock_ReporteEnVivo(t *testing.T) {
	f := newAPI(t)
	f.seedProduct(t, "Destornillador", 10, 2) // no bajo
	low := f.seedProduct(t, "Brocas", 6, 5)   // no bajo todavía

	resp := f.get(t, "/api/inventory/low-stock")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSON[lowStockBody](t, resp)
	assert.Equal(t, 0, body.Total)

	// Una salida que cruza el mínimo aparece de inmediato en el reporte.
	out := f.postJSON(t, "/api/inventory/movements", dto.ApplyMovementRequest{
		ProductID: low, Direction: entity.DirectionOUT, Quantity: 3,
	})
	require.Equal(t, fiber.StatusCreated, out.StatusCode)

	resp = f.get(t, "/api/inventory/low-stock")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeJSON[lowStockBody](t, resp)
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "Brocas", body.Products[0].Name)
	assert.Equal(t, int64(3), body.Products[0].CurrentStock)
	assert.Equal(t, int64(2), body.Products[0].Needed)
}
