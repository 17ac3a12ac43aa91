package pricing

import (
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// Totals montos de una orden en unidades menores.
type Totals struct {
	Subtotal      int64
	DiscountTotal int64
	Tax           int64
	Total         int64
}

// Pricer calcula los totales a partir de las líneas y el descuento solicitado.
// Las reglas de impuestos y descuentos viven fuera del motor de pedidos.
type Pricer interface {
	Price(lines []entity.OrderLine, discountTotal int64) (Totals, error)
}

// FlatTax aplica una tasa única (en puntos básicos) sobre subtotal - descuento.
type FlatTax struct {
	RateBasisPoints int64 // 1900 = 19%
}

var _ Pricer = FlatTax{}

// Price suma las líneas y aplica el impuesto redondeando a la unidad (half-up).
func (p FlatTax) Price(lines []entity.OrderLine, discountTotal int64) (Totals, error) {
	if discountTotal < 0 || p.RateBasisPoints < 0 {
		return Totals{}, domain.ErrInvalidInput
	}
	subtotal := Subtotal(lines)
	taxable := subtotal - discountTotal
	if taxable < 0 {
		return Totals{}, domain.ErrNegativeTotal
	}
	tax := (taxable*p.RateBasisPoints + 5000) / 10000
	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		Tax:           tax,
		Total:         taxable + tax,
	}, nil
}

// Subtotal suma los LineTotal de las líneas.
func Subtotal(lines []entity.OrderLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.LineTotal
	}
	return sum
}

// Apply valida el invariante total = subtotal - descuento + impuesto >= 0 y lo copia a la orden.
func Apply(o *entity.Order, t Totals) error {
	if t.Subtotal != Subtotal(o.Lines) {
		return domain.ErrInvalidInput
	}
	if t.Total != t.Subtotal-t.DiscountTotal+t.Tax {
		return domain.ErrInvalidInput
	}
	if t.Total < 0 {
		return domain.ErrNegativeTotal
	}
	o.Subtotal = t.Subtotal
	o.DiscountTotal = t.DiscountTotal
	o.Tax = t.Tax
	o.Total = t.Total
	return nil
}
