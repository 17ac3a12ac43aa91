package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// ExtraRepository catálogo de extras y sus asignaciones por scope.
type ExtraRepository interface {
	Create(ctx context.Context, e *entity.Extra) error
	GetByID(ctx context.Context, id string) (*entity.Extra, error)
	// GetAllocation devuelve la asignación; si no existe, una en cero.
	GetAllocation(ctx context.Context, scope entity.Scope, extraID string) (*entity.ExtraAllocation, error)
	ListAllocations(ctx context.Context, scope entity.Scope) ([]*entity.ExtraAllocation, error)
	// AddAllocation upsert incremental.
	AddAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error
	// SubtractAllocation condicional (quantity >= qty); si no alcanza devuelve *domain.StockError.
	SubtractAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error
	// SetAllocation fija la cantidad (modo sin seguimiento).
	SetAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error
}
