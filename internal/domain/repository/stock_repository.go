package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por (departamento, sección, ítem).
// Las escrituras deben ejecutarse dentro de una transacción (ver TxRunner).
type StockRepository interface {
	// Get devuelve la entrada del scope; si no existe devuelve una entrada en cero.
	Get(ctx context.Context, scope entity.Scope, itemID string) (*entity.StockEntry, error)
	ListByScope(ctx context.Context, scope entity.Scope) ([]*entity.StockEntry, error)
	// ApplyChanges aplica cada cambio junto con su MovementRecord, en orden.
	// Una salida sin disponible suficiente devuelve *domain.StockError y no escribe nada de ese cambio.
	ApplyChanges(ctx context.Context, changes []entity.StockChange) error
	// Reserve suma a reserved solo si quantity - reserved >= qty.
	Reserve(ctx context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error
	// Unreserve resta de reserved sin bajar de cero.
	Unreserve(ctx context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error
}

// MovementRepository lectura del kardex append-only (lo escribe StockRepository.ApplyChanges).
type MovementRepository interface {
	ListByReference(ctx context.Context, reference string) ([]*entity.MovementRecord, error)
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementRecord, error)
}
