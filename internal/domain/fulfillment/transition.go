package fulfillment

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

var rank = map[entity.LineStatus]int{
	entity.LinePending:    0,
	entity.LineProcessing: 1,
	entity.LineFulfilled:  2,
}

// CanTransition informa si from → to avanza. pending → fulfilled es válido; fulfilled es terminal.
func CanTransition(from, to entity.LineStatus) bool {
	f, okFrom := rank[from]
	t, okTo := rank[to]
	return okFrom && okTo && t > f
}

// Step es el resultado de planear un despacho sobre una línea.
type Step struct {
	Status    entity.LineStatus // estado del registro y nuevo estado de la línea
	Delivered decimal.Decimal   // cantidad que sale en esta transición (0 si solo pasa a processing)
}

// Plan decide la transición de una línea.
//   - target processing sin cantidad: solo pending → processing, entrega 0.
//   - con cantidad: entrega parcial; la línea queda fulfilled cuando lo entregado alcanza quantity.
//     Pedir processing con todo lo pendiente es ErrInvalidTransition: completar exige target fulfilled.
//   - target fulfilled sin cantidad: entrega lo pendiente.
//
// delivered es la suma de FulfilledQuantity de los registros previos de la línea.
func Plan(line *entity.OrderLine, target entity.LineStatus, delivered decimal.Decimal, requested *decimal.Decimal) (Step, error) {
	if line.Status == entity.LineFulfilled {
		return Step{}, domain.ErrInvalidTransition
	}
	if target != entity.LineProcessing && target != entity.LineFulfilled {
		return Step{}, domain.ErrInvalidTransition
	}
	remaining := line.Quantity.Sub(delivered)

	if requested == nil {
		if target == entity.LineProcessing {
			if !CanTransition(line.Status, target) {
				return Step{}, domain.ErrInvalidTransition
			}
			return Step{Status: entity.LineProcessing, Delivered: decimal.Zero}, nil
		}
		if !remaining.IsPositive() {
			return Step{}, domain.ErrFulfillmentExceeded
		}
		return Step{Status: entity.LineFulfilled, Delivered: remaining}, nil
	}

	q := *requested
	if !q.IsPositive() {
		return Step{}, domain.ErrInvalidInput
	}
	if q.GreaterThan(remaining) {
		return Step{}, domain.ErrFulfillmentExceeded
	}
	if q.Equal(remaining) {
		if target == entity.LineProcessing {
			return Step{}, domain.ErrInvalidTransition
		}
		return Step{Status: entity.LineFulfilled, Delivered: q}, nil
	}
	return Step{Status: entity.LineProcessing, Delivered: q}, nil
}

// Delivered suma las cantidades entregadas de los registros de una línea.
func Delivered(records []*entity.FulfillmentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.FulfilledQuantity)
	}
	return total
}
