package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockRequest body para POST /api/inventory/restock.
type RestockRequest struct {
	Scope     string          `json:"scope"` // "DEPT" o "DEPT:section"
	ItemID    string          `json:"item_id"`
	ItemType  string          `json:"item_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
}

// AdjustRequest body para POST /api/inventory/adjust. Delta negativo descuenta (condicional).
type AdjustRequest struct {
	Scope     string          `json:"scope"`
	ItemID    string          `json:"item_id"`
	ItemType  string          `json:"item_type"`
	Delta     decimal.Decimal `json:"delta"`
	Reference string          `json:"reference,omitempty"`
}

// AvailabilityResponse respuesta de GET /api/inventory/availability.
type AvailabilityResponse struct {
	HasStock  bool            `json:"has_stock"`
	Available decimal.Decimal `json:"available"`
	Message   string          `json:"message,omitempty"`
}

// StockEntryResponse una fila del libro de stock.
type StockEntryResponse struct {
	DepartmentID string          `json:"department_id"`
	SectionID    *string         `json:"section_id,omitempty"`
	ItemID       string          `json:"item_id"`
	ItemType     string          `json:"item_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reserved     decimal.Decimal `json:"reserved"`
	Available    decimal.Decimal `json:"available"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"`
	Reference    string          `json:"reference"`
	ItemID       string          `json:"item_id"`
	ItemType     string          `json:"item_type"`
	DepartmentID string          `json:"department_id"`
	SectionID    *string         `json:"section_id,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MovementListResponse página del kardex.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	OrderID  string          `json:"order_id"`
	LineID   string          `json:"line_id,omitempty"`
	ItemID   string          `json:"item_id"`
	Scope    string          `json:"scope"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConsumeReservationRequest body para POST /api/reservations/consume. Sin quantity consume todo lo retenido.
type ConsumeReservationRequest struct {
	OrderID  string           `json:"order_id"`
	ItemID   string           `json:"item_id"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
}

// ReleaseReservationRequest body para POST /api/reservations/release.
type ReleaseReservationRequest struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id,omitempty"`
}

// ReservationResponse una reserva.
type ReservationResponse struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	LineID       string          `json:"line_id,omitempty"`
	ItemID       string          `json:"item_id"`
	DepartmentID string          `json:"department_id"`
	SectionID    *string         `json:"section_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Consumed     decimal.Decimal `json:"consumed"`
	Status       string          `json:"status"`
}
