package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/extras"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
	"github.com/jhoicas/hospitality-ops/internal/application/transfer"
	"github.com/jhoicas/hospitality-ops/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/hospitality-ops/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/hospitality-ops/pkg/jwt"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// buildAPI app completa sobre el store en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	stores := store.Stores()
	log := logger.Nop()

	dir := directory.NewUseCase(store.Departments(), nil, log)
	statsUC := stats.NewUseCase(stores.Orders, store.Departments(), store.Stats(), dir, nil, 0, log)
	t.Cleanup(statsUC.Wait)
	ledger := inventory.NewLedgerUseCase(store, stores.Stock, stores.Movements, log)
	extrasUC := extras.NewUseCase(store, stores.Extras, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Orders: order.NewUseCase(order.Deps{
			TxRunner: store, Orders: stores.Orders, Resolver: dir, Stats: statsUC, Log: log,
		}),
		Transfers: transfer.NewUseCase(transfer.Deps{
			TxRunner: store, Transfers: stores.Transfers, Resolver: dir, Ledger: ledger, Extras: extrasUC, Log: log,
		}),
		Ledger:       ledger,
		Reservations: inventory.NewReservationUseCase(store, log),
		Extras:       extrasUC,
		Directory:    dir,
		Stats:        statsUC,
		JWTSecret:    testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// seedBar crea BAR y BODEGA y carga stock: cerveza 10 y gaseosa 5 en BAR, cerveza 10 en BODEGA.
func seedBar(t *testing.T, app *fiber.App) {
	t.Helper()
	for _, code := range []string{"BAR", "BODEGA"} {
		resp := call(t, app, http.MethodPost, "/api/departments", pkgjwt.RoleAdmin, dto.CreateDepartmentRequest{Code: code, Name: code})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	for _, r := range []dto.RestockRequest{
		{Scope: "BAR", ItemID: "cerveza", ItemType: "inventory", Quantity: decimal.NewFromInt(10)},
		{Scope: "BAR", ItemID: "gaseosa", ItemType: "drink", Quantity: decimal.NewFromInt(5)},
		{Scope: "BODEGA", ItemID: "cerveza", ItemType: "inventory", Quantity: decimal.NewFromInt(10)},
	} {
		resp := call(t, app, http.MethodPost, "/api/inventory/restock", pkgjwt.RoleStorekeeper, r)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
}

func stockOf(t *testing.T, app *fiber.App, scope, item string) dto.StockEntryResponse {
	t.Helper()
	resp := call(t, app, http.MethodGet, "/api/inventory/stock?scope="+scope, pkgjwt.RoleStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[struct {
		Items []dto.StockEntryResponse `json:"items"`
	}](t, resp)
	for _, e := range out.Items {
		if e.ItemID == item {
			return e
		}
	}
	t.Fatalf("sin stock de %s en %s", item, scope)
	return dto.StockEntryResponse{}
}

func TestAPI_OrdenCrearYDespachar(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleManager, dto.CreateOrderRequest{
		Lines: []dto.OrderLineRequest{
			{ProductID: "cerveza", ProductType: "inventory", Scope: "BAR", Quantity: decimal.NewFromInt(3), UnitPrice: 500},
			{ProductID: "gaseosa", ProductType: "drink", Scope: "BAR", Quantity: decimal.NewFromInt(1), UnitPrice: 1200},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, int64(2700), created.Subtotal)
	assert.Equal(t, "pending", created.Status)
	require.Len(t, created.Lines, 2)

	var last dto.OrderResponse
	for _, l := range created.Lines {
		resp := call(t, app, http.MethodPut, "/api/orders/"+created.ID+"/lines/"+l.ID+"/fulfillment",
			pkgjwt.RoleStaff, dto.FulfillLineRequest{Status: "fulfilled"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		last = decode[dto.OrderResponse](t, resp)
	}
	assert.Equal(t, "fulfilled", last.Status)
	assert.Equal(t, 100, last.Fulfillment.Percent)

	cerveza := stockOf(t, app, "BAR", "cerveza")
	assert.True(t, cerveza.Quantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, cerveza.Reserved.IsZero())
	assert.True(t, stockOf(t, app, "BAR", "gaseosa").Quantity.Equal(decimal.NewFromInt(4)))

	resp = call(t, app, http.MethodGet, "/api/inventory/movements?reference="+created.ID, pkgjwt.RoleStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	movements := decode[dto.MovementListResponse](t, resp)
	assert.Len(t, movements.Items, 2)
	assert.Equal(t, 2, movements.Page.Total)
}

func TestAPI_DespachoExcedidoEs400(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleManager, dto.CreateOrderRequest{
		Lines: []dto.OrderLineRequest{{ProductID: "cerveza", ProductType: "inventory", Scope: "BAR", Quantity: decimal.NewFromInt(2), UnitPrice: 500}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderResponse](t, resp)

	five := decimal.NewFromInt(5)
	resp = call(t, app, http.MethodPut, "/api/orders/"+created.ID+"/lines/"+created.Lines[0].ID+"/fulfillment",
		pkgjwt.RoleStaff, dto.FulfillLineRequest{Status: "fulfilled", Quantity: &five})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "FULFILLMENT_EXCEEDED", body.Code)
}

func TestAPI_OrdenSinStockEs409(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleManager, dto.CreateOrderRequest{
		Lines: []dto.OrderLineRequest{{ProductID: "cerveza", ProductType: "inventory", Scope: "BAR", Quantity: decimal.NewFromInt(50), UnitPrice: 500}},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

func TestAPI_AprobarTrasladoSinStockResponde409ConSuccessFalse(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/transfers", pkgjwt.RoleStorekeeper, dto.CreateTransferRequest{
		From:  "BODEGA",
		To:    "BAR",
		Items: []dto.TransferItemRequest{{ProductType: "inventory", ProductID: "cerveza", Quantity: decimal.NewFromInt(11)}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/transfers/"+created.ID+"/approve", pkgjwt.RoleManager, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decode[dto.ApproveTransferResponse](t, resp)
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "stock insuficiente")
}

func TestAPI_AprobarTrasladoMueveStock(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/transfers", pkgjwt.RoleStorekeeper, dto.CreateTransferRequest{
		From:  "BODEGA",
		To:    "BAR",
		Items: []dto.TransferItemRequest{{ProductType: "inventory", ProductID: "cerveza", Quantity: decimal.NewFromInt(4)}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/transfers/"+created.ID+"/approve", pkgjwt.RoleManager, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[dto.ApproveTransferResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "completed", body.Transfer.Status)

	assert.True(t, stockOf(t, app, "BODEGA", "cerveza").Quantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, stockOf(t, app, "BAR", "cerveza").Quantity.Equal(decimal.NewFromInt(14)))

	resp = call(t, app, http.MethodPost, "/api/transfers/"+created.ID+"/approve", pkgjwt.RoleManager, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ReanudarTraslado(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/transfers", pkgjwt.RoleStorekeeper, dto.CreateTransferRequest{
		From:  "BODEGA",
		To:    "BAR",
		Items: []dto.TransferItemRequest{{ProductType: "inventory", ProductID: "cerveza", Quantity: decimal.NewFromInt(1)}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/transfers/"+created.ID+"/resume", pkgjwt.RoleStorekeeper, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "reanudar es de administración")
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/transfers/"+created.ID+"/resume", pkgjwt.RoleManager, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "un traslado pending se aprueba")
	resp.Body.Close()
}

func TestAPI_RolesDeEscritura(t *testing.T) {
	app := buildAPI(t)
	seedBar(t, app)

	resp := call(t, app, http.MethodPost, "/api/inventory/restock", pkgjwt.RoleStaff, dto.RestockRequest{
		Scope: "BAR", ItemID: "cerveza", ItemType: "inventory", Quantity: decimal.NewFromInt(1),
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "el personal de piso no registra entradas")
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/orders", pkgjwt.RoleCashier, dto.CreateOrderRequest{})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/departments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "sin token")
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/departments", pkgjwt.RoleCashier, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "las lecturas solo requieren token")
	list := decode[dto.DepartmentListResponse](t, resp)
	assert.Len(t, list.Items, 2)
}

func TestAPI_CuerpoInvalidoEs400(t *testing.T) {
	app := buildAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/departments", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_BODY", body.Code)
}
