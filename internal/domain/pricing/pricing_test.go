package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/pricing"
)

func orderLines() []entity.OrderLine {
	return []entity.OrderLine{
		{Quantity: decimal.NewFromInt(3), UnitPrice: 500, LineTotal: entity.ComputeLineTotal(decimal.NewFromInt(3), 500)},
		{Quantity: decimal.NewFromInt(1), UnitPrice: 1200, LineTotal: entity.ComputeLineTotal(decimal.NewFromInt(1), 1200)},
	}
}

func TestFlatTax_SubtotalSumaLineas(t *testing.T) {
	totals, err := pricing.FlatTax{}.Price(orderLines(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2700), totals.Subtotal)
	assert.Equal(t, int64(2700), totals.Total)
}

func TestFlatTax_ImpuestoSobreBaseConDescuento(t *testing.T) {
	totals, err := pricing.FlatTax{RateBasisPoints: 1900}.Price(orderLines(), 700)
	require.NoError(t, err)
	assert.Equal(t, int64(2700), totals.Subtotal)
	assert.Equal(t, int64(700), totals.DiscountTotal)
	assert.Equal(t, int64(380), totals.Tax, "19% de 2000")
	assert.Equal(t, int64(2380), totals.Total)
}

func TestFlatTax_DescuentoMayorAlSubtotal(t *testing.T) {
	_, err := pricing.FlatTax{RateBasisPoints: 1900}.Price(orderLines(), 3000)
	assert.ErrorIs(t, err, domain.ErrNegativeTotal)
}

func TestComputeLineTotal_RedondeaFracciones(t *testing.T) {
	assert.Equal(t, int64(1250), entity.ComputeLineTotal(decimal.RequireFromString("2.5"), 500))
	assert.Equal(t, int64(334), entity.ComputeLineTotal(decimal.RequireFromString("0.333"), 1003))
}

func TestApply_ValidaInvariante(t *testing.T) {
	o := &entity.Order{Lines: orderLines()}
	err := pricing.Apply(o, pricing.Totals{Subtotal: 2700, DiscountTotal: 100, Tax: 0, Total: 2700})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, pricing.Apply(o, pricing.Totals{Subtotal: 2700, DiscountTotal: 100, Tax: 50, Total: 2650}))
	assert.Equal(t, int64(2650), o.Total)
}
