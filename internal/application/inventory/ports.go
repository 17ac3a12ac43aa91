package inventory

import (
	"context"

	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los errores de concurrencia o timeout
// llegan envueltos con domain.Transient.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Stores) error) error
}
