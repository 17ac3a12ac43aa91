package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// DefaultTxTimeout duración máxima de una transacción interactiva.
const DefaultTxTimeout = 12 * time.Second

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con timeout.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout <= 0 usa DefaultTxTimeout.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// lock_timeout evita esperas largas en filas calientes; al vencer se reporta como transitorio.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Stores) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.timeout.Milliseconds()/2)); err != nil {
		return classify(fmt.Errorf("set lock_timeout: %w", err))
	}

	if err := fn(NewStores(tx)); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// NewStores arma los repositorios sobre q (pool o tx).
func NewStores(q Querier) repository.Stores {
	return repository.Stores{
		Stock:        NewStockRepository(q),
		Movements:    NewMovementRepository(q),
		Reservations: NewReservationRepository(q),
		Orders:       NewOrderRepository(q),
		Transfers:    NewTransferRepository(q),
		Extras:       NewExtraRepository(q),
	}
}
