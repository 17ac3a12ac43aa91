package fulfillment

import "github.com/jhoicas/hospitality-ops/internal/domain/entity"

// Summary resultado del roll-up de una orden.
type Summary struct {
	TotalLines     int
	FulfilledLines int
	Percent        int // 0..100, truncado
	Status         entity.OrderStatus
}

var orderRank = map[entity.OrderStatus]int{
	entity.OrderPending:    0,
	entity.OrderProcessing: 1,
	entity.OrderFulfilled:  2,
}

// Rollup calcula el avance y el estado de la orden a partir de sus líneas.
// Es una función pura: mismas entradas, mismo resultado. Los estados completed, cancelled
// y refunded no se tocan, y el estado nunca retrocede.
func Rollup(current entity.OrderStatus, lines []entity.OrderLine) Summary {
	s := Summary{TotalLines: len(lines), Status: current}
	started := false
	for _, l := range lines {
		switch l.Status {
		case entity.LineFulfilled:
			s.FulfilledLines++
			started = true
		case entity.LineProcessing:
			started = true
		}
	}
	if s.TotalLines > 0 {
		s.Percent = s.FulfilledLines * 100 / s.TotalLines
	}

	cur, tracked := orderRank[current]
	if !tracked {
		return s
	}
	computed := entity.OrderPending
	switch {
	case s.TotalLines > 0 && s.FulfilledLines == s.TotalLines:
		computed = entity.OrderFulfilled
	case started:
		computed = entity.OrderProcessing
	}
	if orderRank[computed] > cur {
		s.Status = computed
	}
	return s
}
