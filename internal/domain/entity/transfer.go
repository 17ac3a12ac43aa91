package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del traslado. completed es terminal.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferCompleted TransferStatus = "completed"
)

// Transfer mueve cantidades desde un departamento (siempre nivel departamento)
// hacia otro departamento o hacia una sección.
type Transfer struct {
	ID          string
	From        Scope
	To          Scope
	Status      TransferStatus
	Items       []TransferItem
	Notes       string
	RequestedBy string
	ApprovedBy  string
	CreatedAt   time.Time
	ApprovedAt  *time.Time
	CompletedAt *time.Time
}

// TransferItem una línea del traslado, en orden de captura.
type TransferItem struct {
	Position    int
	ProductType ProductType
	ProductID   string
	Quantity    decimal.Decimal
}

// CoreItems devuelve los ítems que viajan en la transacción principal (inventario y bebidas).
func (t *Transfer) CoreItems() []TransferItem {
	var out []TransferItem
	for _, it := range t.Items {
		if it.ProductType != ProductTypeExtra {
			out = append(out, it)
		}
	}
	return out
}

// ExtraItems devuelve los extras, que se trasladan después del commit principal.
func (t *Transfer) ExtraItems() []TransferItem {
	var out []TransferItem
	for _, it := range t.Items {
		if it.ProductType == ProductTypeExtra {
			out = append(out, it)
		}
	}
	return out
}
