package order_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/events"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/pricing"
	"github.com/jhoicas/hospitality-ops/internal/infrastructure/memory"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

type fixture struct {
	store     *memory.Store
	orders    *order.UseCase
	ledger    *inventory.LedgerUseCase
	stats     *stats.UseCase
	recorder  *events.Recorder
	bar       entity.Scope
	barra     entity.Scope
	barDeptID string
}

// newFixture BAR con sección "barra"; cerveza (inventory) 10 y gaseosa (drink) 5 en el nivel BAR.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := logger.Nop()

	dir := directory.NewUseCase(store.Departments(), nil, log)
	dept, err := dir.CreateDepartment(ctx, dto.CreateDepartmentRequest{Code: "BAR", Name: "Bar"})
	require.NoError(t, err)
	sec, err := dir.CreateSection(ctx, dept.ID, dto.CreateSectionRequest{Code: "barra", Name: "Barra"})
	require.NoError(t, err)

	stores := store.Stores()
	statsUC := stats.NewUseCase(stores.Orders, store.Departments(), store.Stats(), dir, nil, 0, log)
	t.Cleanup(statsUC.Wait)
	recorder := &events.Recorder{}
	f := &fixture{
		store:  store,
		ledger: inventory.NewLedgerUseCase(store, stores.Stock, stores.Movements, log),
		stats:  statsUC,
		orders: order.NewUseCase(order.Deps{
			TxRunner:  store,
			Orders:    stores.Orders,
			Resolver:  dir,
			Pricer:    pricing.FlatTax{},
			Stats:     statsUC,
			Publisher: recorder,
			Log:       log,
		}),
		recorder:  recorder,
		bar:       entity.DepartmentScope(dept.ID),
		barra:     entity.SectionScope(dept.ID, sec.ID),
		barDeptID: dept.ID,
	}
	f.restock(t, f.bar, "cerveza", entity.ProductTypeInventory, "10")
	f.restock(t, f.bar, "gaseosa", entity.ProductTypeDrink, "5")
	return f
}

func (f *fixture) restock(t *testing.T, scope entity.Scope, item string, typ entity.ProductType, q string) {
	t.Helper()
	require.NoError(t, f.ledger.Restock(context.Background(), inventory.RestockInput{
		Scope: scope, ItemID: item, ItemType: typ, Quantity: qty(q), Reference: "seed",
	}))
}

func (f *fixture) stock(t *testing.T, scope entity.Scope, item string) *entity.StockEntry {
	t.Helper()
	e, err := f.store.Stores().Stock.Get(context.Background(), scope, item)
	require.NoError(t, err)
	return e
}

func (f *fixture) twoLineOrder(t *testing.T) *order.View {
	t.Helper()
	v, err := f.orders.Create(context.Background(), order.CreateInput{
		CustomerRef: "hab-204",
		UserID:      "u-1",
		Lines: []order.LineInput{
			{ProductID: "cerveza", ProductType: entity.ProductTypeInventory, ProductName: "Cerveza", ScopeCode: "BAR", Quantity: qty("3"), UnitPrice: 500},
			{ProductID: "gaseosa", ProductType: entity.ProductTypeDrink, ProductName: "Gaseosa", ScopeCode: "BAR", Quantity: qty("1"), UnitPrice: 1200},
		},
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) fulfill(t *testing.T, orderID, lineID string, status entity.LineStatus, q *decimal.Decimal) (*order.View, error) {
	t.Helper()
	return f.orders.FulfillLine(context.Background(), order.FulfillInput{
		OrderID: orderID, LineID: lineID, Status: status, Quantity: q, UserID: "u-2",
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Toma de pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CalculaTotalesYReservaStock(t *testing.T) {
	f := newFixture(t)
	v := f.twoLineOrder(t)

	o := v.Order
	assert.Equal(t, int64(2700), o.Subtotal)
	assert.Equal(t, int64(2700), o.Total)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, entity.PaymentUnpaid, o.PaymentStatus)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), o.OrderNumber)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 1, o.Lines[0].LineNumber)
	assert.Equal(t, 2, o.Lines[1].LineNumber)
	require.Len(t, o.Departments, 1)
	assert.Equal(t, f.barDeptID, o.Departments[0].DepartmentID)

	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.Equal(qty("3")))
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("10")), "crear no descuenta stock")
}

func TestCreate_SinStockNoCreaNada(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Create(context.Background(), order.CreateInput{
		Lines: []order.LineInput{
			{ProductID: "cerveza", ProductType: entity.ProductTypeInventory, ScopeCode: "BAR", Quantity: qty("2"), UnitPrice: 500},
			{ProductID: "gaseosa", ProductType: entity.ProductTypeDrink, ScopeCode: "BAR", Quantity: qty("6"), UnitPrice: 1200},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.IsZero(), "la reserva de la primera línea se revierte")
}

func TestCreate_EntradaInvalida(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.orders.Create(ctx, order.CreateInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.Create(ctx, order.CreateInput{Lines: []order.LineInput{
		{ProductID: "toalla", ProductType: entity.ProductTypeExtra, ScopeCode: "BAR", Quantity: qty("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los extras no se venden como línea")

	_, err = f.orders.Create(ctx, order.CreateInput{Lines: []order.LineInput{
		{ProductID: "cerveza", ProductType: entity.ProductTypeInventory, ScopeCode: "NOPE", Quantity: qty("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ServicioNoReservaStock(t *testing.T) {
	f := newFixture(t)
	v, err := f.orders.Create(context.Background(), order.CreateInput{Lines: []order.LineInput{
		{ProductID: "masaje", ProductType: entity.ProductTypeService, ScopeCode: "BAR:barra", Quantity: qty("1"), UnitPrice: 90000},
	}})
	require.NoError(t, err)
	require.Len(t, v.Order.Lines, 1)
	require.NotNil(t, v.Order.Lines[0].SectionID)
	assert.True(t, v.Order.Lines[0].Scope().Equal(f.barra))
}

func TestAddLineYRemoveLine_AjustanTotalesYReservas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)

	v, err := f.orders.AddLine(ctx, v.Order.ID, order.LineInput{
		ProductID: "cerveza", ProductType: entity.ProductTypeInventory, ScopeCode: "BAR", Quantity: qty("2"), UnitPrice: 500,
	})
	require.NoError(t, err)
	require.Len(t, v.Order.Lines, 3)
	assert.Equal(t, 3, v.Order.Lines[2].LineNumber)
	assert.Equal(t, int64(3700), v.Order.Total)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.Equal(qty("5")))

	v, err = f.orders.RemoveLine(ctx, v.Order.ID, v.Order.Lines[2].ID)
	require.NoError(t, err)
	assert.Len(t, v.Order.Lines, 2)
	assert.Equal(t, int64(2700), v.Order.Total)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.Equal(qty("3")))
}

func TestUpdateLineQuantity_RehaceLaReserva(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)
	lineID := v.Order.Lines[0].ID

	v, err := f.orders.UpdateLineQuantity(ctx, v.Order.ID, lineID, qty("5"))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), v.Order.Lines[0].LineTotal)
	assert.Equal(t, int64(3700), v.Order.Total)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.Equal(qty("5")))

	_, err = f.orders.UpdateLineQuantity(ctx, v.Order.ID, lineID, qty("11"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.Equal(qty("5")), "un fallo no toca la reserva anterior")
}

func TestApplyDiscount_TotalNuncaNegativo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)

	v, err := f.orders.ApplyDiscount(ctx, v.Order.ID, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(700), v.Order.DiscountTotal)
	assert.Equal(t, int64(2000), v.Order.Total)

	_, err = f.orders.ApplyDiscount(ctx, v.Order.ID, 3000)
	assert.ErrorIs(t, err, domain.ErrNegativeTotal)
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfillLine_DosLineasDescuentanStockYRegistranDosMovimientos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)
	orderID := v.Order.ID

	v, err := f.fulfill(t, orderID, v.Order.Lines[0].ID, entity.LineFulfilled, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcessing, v.Order.Status)

	v, err = f.fulfill(t, orderID, v.Order.Lines[1].ID, entity.LineFulfilled, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderFulfilled, v.Order.Status)
	assert.Equal(t, 2, v.Summary.FulfilledLines)

	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("7")))
	assert.True(t, f.stock(t, f.bar, "gaseosa").Quantity.Equal(qty("4")))
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.IsZero(), "el despacho consume la reserva")

	movements, err := f.ledger.ListMovements(ctx, orderID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, entity.MovementOut, m.Type)
		assert.Equal(t, entity.ReasonSale, m.Reason)
	}

	stored, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderFulfilled, stored.Order.Status)
	for _, d := range stored.Order.Departments {
		assert.Equal(t, entity.OrderFulfilled, d.Status, "los departamentos siguen el estado de la orden")
	}

	published := f.recorder.OfType(events.OrderFulfilled)
	require.Len(t, published, 1)
	assert.Equal(t, orderID, published[0].Key)

	f.stats.Wait()
	st, err := f.stats.Get(ctx, f.barDeptID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.FulfilledLines)
	assert.Equal(t, int64(2700), st.FulfilledRevenue)
}

func TestFulfillLine_ParcialNoSuperaLaCantidad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)
	orderID, lineID := v.Order.ID, v.Order.Lines[0].ID

	v, err := f.fulfill(t, orderID, lineID, entity.LineProcessing, ptr(qty("2")))
	require.NoError(t, err)
	assert.Equal(t, entity.LineProcessing, v.Order.Lines[0].Status)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("8")))

	_, err = f.fulfill(t, orderID, lineID, entity.LineFulfilled, ptr(qty("2")))
	require.ErrorIs(t, err, domain.ErrFulfillmentExceeded)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("8")))

	v, err = f.fulfill(t, orderID, lineID, entity.LineFulfilled, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.LineFulfilled, v.Order.Lines[0].Status)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("7")))

	records, err := f.orders.Fulfillments(ctx, orderID, lineID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].FulfilledQuantity.Equal(qty("2")))
	assert.True(t, records[1].FulfilledQuantity.Equal(qty("1")))
}

func TestFulfillLine_ProcessingSinCantidadNoMueveStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)

	v, err := f.fulfill(t, v.Order.ID, v.Order.Lines[0].ID, entity.LineProcessing, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcessing, v.Order.Status)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("10")))

	movements, err := f.ledger.ListMovements(ctx, v.Order.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestFulfillLine_ProcessingConTodoLoPendienteNoDespacha(t *testing.T) {
	f := newFixture(t)
	v := f.twoLineOrder(t)

	_, err := f.fulfill(t, v.Order.ID, v.Order.Lines[0].ID, entity.LineProcessing, ptr(qty("3")))
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("10")))

	v, err = f.fulfill(t, v.Order.ID, v.Order.Lines[0].ID, entity.LineFulfilled, ptr(qty("3")))
	require.NoError(t, err)
	assert.Equal(t, entity.LineFulfilled, v.Order.Lines[0].Status)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("7")))
}

func TestFulfillLine_LineaDespachadaEsTerminal(t *testing.T) {
	f := newFixture(t)
	v := f.twoLineOrder(t)
	_, err := f.fulfill(t, v.Order.ID, v.Order.Lines[1].ID, entity.LineFulfilled, nil)
	require.NoError(t, err)

	_, err = f.fulfill(t, v.Order.ID, v.Order.Lines[1].ID, entity.LineFulfilled, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestFulfillLine_OrdenCerradaRechaza(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)

	_, err := f.orders.Cancel(ctx, v.Order.ID)
	require.NoError(t, err)

	_, err = f.fulfill(t, v.Order.ID, v.Order.Lines[0].ID, entity.LineFulfilled, nil)
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("10")))
}

func TestFulfillLine_FaltanteRevierteTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)
	orderID, lineID := v.Order.ID, v.Order.Lines[0].ID

	// La reserva se perdió y el stock quedó por debajo de la línea.
	require.NoError(t, f.store.Stores().Stock.Unreserve(ctx, f.bar, "cerveza", qty("3")))
	require.NoError(t, f.ledger.Adjust(ctx, inventory.AdjustInput{
		Scope: f.bar, ItemID: "cerveza", ItemType: entity.ProductTypeInventory, Delta: qty("-9"), Reference: "merma",
	}))

	_, err := f.fulfill(t, orderID, lineID, entity.LineFulfilled, nil)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("1")))
	movements, err := f.ledger.ListMovements(ctx, orderID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movements, "sin movimiento de venta")

	stored, err := f.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.LinePending, stored.Order.Lines[0].Status)
	assert.Equal(t, entity.OrderPending, stored.Order.Status)

	records, err := f.orders.Fulfillments(ctx, orderID, lineID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, f.recorder.OfType(events.OrderFulfilled))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estados terminales
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_LiberaReservas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)

	v, err := f.orders.Cancel(ctx, v.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, v.Order.Status)
	assert.True(t, f.stock(t, f.bar, "cerveza").Reserved.IsZero())
	assert.True(t, f.stock(t, f.bar, "gaseosa").Reserved.IsZero())

	_, err = f.orders.Cancel(ctx, v.Order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
}

func TestCompleteYRefund_SoloDesdeDespachada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.twoLineOrder(t)
	orderID := v.Order.ID

	_, err := f.orders.Complete(ctx, orderID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.orders.Refund(ctx, orderID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, l := range v.Order.Lines {
		_, err := f.fulfill(t, orderID, l.ID, entity.LineFulfilled, nil)
		require.NoError(t, err)
	}

	v, err = f.orders.Complete(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, v.Order.Status)
	assert.Equal(t, entity.PaymentPaid, v.Order.PaymentStatus)

	_, err = f.orders.Cancel(ctx, orderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	v, err = f.orders.Refund(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderRefunded, v.Order.Status)
	assert.Equal(t, entity.PaymentRefunded, v.Order.PaymentStatus)
	assert.True(t, f.stock(t, f.bar, "cerveza").Quantity.Equal(qty("7")), "el reembolso no reingresa stock")
}
