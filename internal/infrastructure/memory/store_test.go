package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/internal/infrastructure/memory"
)

var bar = entity.DepartmentScope("dept-bar")

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func restock(item, q string) entity.StockChange {
	return entity.StockChange{
		Scope:     bar,
		ItemID:    item,
		ItemType:  entity.ProductTypeInventory,
		Direction: entity.MovementIn,
		Quantity:  qty(q),
		Reason:    entity.ReasonRestock,
		Reference: "seed",
	}
}

func sale(item, q string) entity.StockChange {
	ch := restock(item, q)
	ch.Direction = entity.MovementOut
	ch.Reason = entity.ReasonSale
	ch.Reference = "order-1"
	return ch
}

func TestRun_ErrorDescartaLosCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	boom := errors.New("boom")

	err := store.Run(ctx, func(tx repository.Stores) error {
		require.NoError(t, tx.Stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "10")}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	entry, err := store.Stores().Stock.Get(ctx, bar, "cerveza")
	require.NoError(t, err)
	assert.True(t, entry.Quantity.IsZero(), "el rollback no debe dejar stock")

	movements, err := store.Stores().Movements.ListByReference(ctx, "seed")
	require.NoError(t, err)
	assert.Empty(t, movements, "el rollback no debe dejar movimientos")
}

func TestRun_CommitConcurrenteDevuelveTransitorio(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.Run(ctx, func(tx repository.Stores) error {
		require.NoError(t, tx.Stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "5")}))
		// Otra transacción publica antes que esta.
		return store.Run(ctx, func(inner repository.Stores) error {
			return inner.Stock.ApplyChanges(ctx, []entity.StockChange{restock("vino", "2")})
		})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.True(t, domain.IsRetryable(err))

	cerveza, _ := store.Stores().Stock.Get(ctx, bar, "cerveza")
	vino, _ := store.Stores().Stock.Get(ctx, bar, "vino")
	assert.True(t, cerveza.Quantity.IsZero(), "el perdedor no publica nada")
	assert.True(t, vino.Quantity.Equal(qty("2")), "el ganador queda publicado")
}

func TestApplyChanges_TodoONada(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	stock := store.Stores().Stock

	err := stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "4"), sale("vino", "1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "vino", stockErr.ItemID)

	entry, _ := stock.Get(ctx, bar, "cerveza")
	assert.True(t, entry.Quantity.IsZero(), "la entrada del mismo lote no debe quedar aplicada")
}

func TestApplyChanges_CadaCambioDejaSuMovimiento(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	stock := store.Stores().Stock

	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "10")}))
	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{sale("cerveza", "3")}))

	entry, _ := stock.Get(ctx, bar, "cerveza")
	assert.True(t, entry.Quantity.Equal(qty("7")))

	movements, err := store.Stores().Movements.ListByItem(ctx, "cerveza", 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, entity.MovementIn, movements[0].Type)
	assert.Equal(t, entity.MovementOut, movements[1].Type)
	assert.Equal(t, entity.ReasonSale, movements[1].Reason)
	assert.Equal(t, "order-1", movements[1].Reference)
}

func TestApplyChanges_SalidaRespetaLoReservado(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	stock := store.Stores().Stock

	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "5")}))
	require.NoError(t, stock.Reserve(ctx, bar, "cerveza", qty("4")))

	err := stock.ApplyChanges(ctx, []entity.StockChange{sale("cerveza", "2")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "solo 1 unidad está libre")

	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{sale("cerveza", "1")}))
	entry, _ := stock.Get(ctx, bar, "cerveza")
	assert.True(t, entry.Quantity.Equal(qty("4")))
	assert.True(t, entry.Available().IsZero())
}

func TestReserve_NoSobrevende(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	stock := store.Stores().Stock

	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{restock("cerveza", "3")}))
	require.NoError(t, stock.Reserve(ctx, bar, "cerveza", qty("2")))
	assert.ErrorIs(t, stock.Reserve(ctx, bar, "cerveza", qty("2")), domain.ErrInsufficientStock)

	require.NoError(t, stock.Unreserve(ctx, bar, "cerveza", qty("5")))
	entry, _ := stock.Get(ctx, bar, "cerveza")
	assert.True(t, entry.Reserved.IsZero(), "unreserve nunca deja reserved negativo")
}

func TestStockPorScope_SeccionYDepartamentoSonIndependientes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	stock := store.Stores().Stock
	barra := entity.SectionScope("dept-bar", "sec-barra")

	ch := restock("cerveza", "6")
	ch.Scope = barra
	require.NoError(t, stock.ApplyChanges(ctx, []entity.StockChange{ch}))

	dept, _ := stock.Get(ctx, bar, "cerveza")
	sec, _ := stock.Get(ctx, barra, "cerveza")
	assert.True(t, dept.Quantity.IsZero())
	assert.True(t, sec.Quantity.Equal(qty("6")))

	list, err := stock.ListByScope(ctx, barra)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Scope.Equal(barra))
}
