package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus estado de una retención.
type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "reserved"
	ReservationConsumed ReservationStatus = "consumed"
	ReservationReleased ReservationStatus = "released"
)

// Reservation retiene stock disponible para una línea de orden entre la toma del pedido y el despacho.
type Reservation struct {
	ID        string
	OrderID   string
	LineID    string
	ItemID    string
	Scope     Scope
	Quantity  decimal.Decimal
	Consumed  decimal.Decimal
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding es lo que sigue retenido (Quantity - Consumed) mientras la reserva está abierta.
func (r *Reservation) Outstanding() decimal.Decimal {
	if r == nil || r.Status != ReservationReserved {
		return decimal.Zero
	}
	o := r.Quantity.Sub(r.Consumed)
	if o.IsNegative() {
		return decimal.Zero
	}
	return o
}
