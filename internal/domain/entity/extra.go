package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Extra consumible complementario (toallas, kits de amenidades, fichas de juego...).
// Con TrackQuantity=false su cantidad es siempre 1 y la disponibilidad siempre pasa.
type Extra struct {
	ID            string
	Name          string
	TrackQuantity bool
	CreatedAt     time.Time
}

// ExtraAllocation cantidad de un extra asignada a un scope.
type ExtraAllocation struct {
	Scope     Scope
	ExtraID   string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// UntrackedQuantity es la cantidad fija de los extras sin seguimiento.
var UntrackedQuantity = decimal.NewFromInt(1)
