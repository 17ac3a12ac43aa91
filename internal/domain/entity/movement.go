package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType dirección del movimiento.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// MovementReason motivo auditable del movimiento.
type MovementReason string

const (
	ReasonSale        MovementReason = "sale"
	ReasonTransferIn  MovementReason = "transfer_in"
	ReasonTransferOut MovementReason = "transfer_out"
	ReasonRestock     MovementReason = "restock"
	ReasonAdjustment  MovementReason = "adjustment"
)

// MovementRecord fila append-only del libro: nunca se actualiza ni se borra.
// Reference apunta a la orden o al traslado que originó el cambio.
type MovementRecord struct {
	ID        string
	Type      MovementType
	Quantity  decimal.Decimal // siempre positiva; el signo lo da Type
	Reason    MovementReason
	Reference string
	ItemID    string
	ItemType  ProductType
	Scope     Scope
	CreatedBy string
	CreatedAt time.Time
}
