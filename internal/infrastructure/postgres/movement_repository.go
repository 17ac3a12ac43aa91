package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, type, quantity, reason, reference, item_id, item_type, department_id, section_id, created_by, created_at`

// MovementRepo lectura del kardex (stock_movements). Las filas las inserta StockRepo.ApplyChanges.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// ListByReference movimientos de una orden o traslado en orden cronológico.
func (r *MovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return collectMovements(rows)
}

// ListByItem movimientos de un ítem, más recientes primero.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.MovementRecord, error) {
	defer rows.Close()
	var list []*entity.MovementRecord
	for rows.Next() {
		var (
			m                     entity.MovementRecord
			typ, reason, itemType string
			sectionID             *string
		)
		if err := rows.Scan(&m.ID, &typ, &m.Quantity, &reason, &m.Reference, &m.ItemID, &itemType,
			&m.Scope.DepartmentID, &sectionID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		m.Reason = entity.MovementReason(reason)
		m.ItemType = entity.ProductType(itemType)
		m.Scope.SectionID = sectionID
		list = append(list, &m)
	}
	return list, rows.Err()
}
