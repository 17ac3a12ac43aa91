package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// TransferRepository persiste traslados y sus ítems.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// UpdateStatus cambia el estado solo si el actual es from; si no, ErrConflict.
	UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, by string, at time.Time) error
	// ClaimStale toma un traslado approved cuya aprobación es anterior a before, reasignándolo a by
	// con approved_at = at. Si no está approved o la aprobación es más reciente, ErrConflict.
	ClaimStale(ctx context.Context, id string, before time.Time, by string, at time.Time) error
}
