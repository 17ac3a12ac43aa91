package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry es el contador de un ítem en un scope. Quantity nunca es negativa;
// Reserved son retenciones de órdenes aún no despachadas.
type StockEntry struct {
	Scope     Scope
	ItemID    string
	ItemType  ProductType
	Quantity  decimal.Decimal
	Reserved  decimal.Decimal
	UpdatedAt time.Time
}

// Available = max(0, Quantity - Reserved).
func (s *StockEntry) Available() decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	a := s.Quantity.Sub(s.Reserved)
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}

// StockChange es la única primitiva de escritura del libro: actualiza el contador del scope
// y agrega su MovementRecord en la misma transacción.
// Direction out es condicional (Quantity-Reserved >= cantidad); in es un upsert incondicional.
type StockChange struct {
	Scope     Scope
	ItemID    string
	ItemType  ProductType
	Direction MovementType
	Quantity  decimal.Decimal
	Reason    MovementReason
	Reference string
	CreatedBy string
}
