package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExtraRequest body para POST /api/extras.
type CreateExtraRequest struct {
	Name          string `json:"name"`
	TrackQuantity bool   `json:"track_quantity"`
}

// ExtraResponse un extra del catálogo.
type ExtraResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TrackQuantity bool      `json:"track_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// AllocateExtraRequest body para POST /api/extras/allocations.
type AllocateExtraRequest struct {
	Scope    string          `json:"scope"`
	ExtraID  string          `json:"extra_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TransferExtraRequest body para POST /api/extras/transfers.
type TransferExtraRequest struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	ExtraID  string          `json:"extra_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ExtraAllocationResponse asignación de un extra a un scope.
type ExtraAllocationResponse struct {
	DepartmentID string          `json:"department_id"`
	SectionID    *string         `json:"section_id,omitempty"`
	ExtraID      string          `json:"extra_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
