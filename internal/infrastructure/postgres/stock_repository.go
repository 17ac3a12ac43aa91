package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// Una salida es un único UPDATE condicional; el INSERT del movimiento solo ocurre si el UPDATE afectó la fila.
const decrementStockSQL = `
	WITH upd AS (
		UPDATE stock_entries
		SET quantity = quantity - $4, updated_at = now()
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND item_id = $3
		  AND quantity - reserved >= $4
		RETURNING department_id, section_id, item_id, item_type
	)
	INSERT INTO stock_movements (id, type, quantity, reason, reference, item_id, item_type, department_id, section_id, created_by, created_at)
	SELECT $5, 'out', $4, $6, $7, upd.item_id, COALESCE(NULLIF($8, ''), upd.item_type), upd.department_id, upd.section_id, $9, now()
	FROM upd`

// Una entrada es un upsert sobre (department_id, section_id, item_id) con NULLS NOT DISTINCT.
const incrementStockSQL = `
	WITH up AS (
		INSERT INTO stock_entries (department_id, section_id, item_id, item_type, quantity, reserved, updated_at)
		VALUES ($1, $2, $3, $8, $4, 0, now())
		ON CONFLICT (department_id, section_id, item_id)
		DO UPDATE SET quantity = stock_entries.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING department_id, section_id, item_id
	)
	INSERT INTO stock_movements (id, type, quantity, reason, reference, item_id, item_type, department_id, section_id, created_by, created_at)
	SELECT $5, 'in', $4, $6, $7, up.item_id, $8, up.department_id, up.section_id, $9, now()
	FROM up`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un ítem en un scope; si no hay fila devuelve cero.
func (r *StockRepo) Get(ctx context.Context, scope entity.Scope, itemID string) (*entity.StockEntry, error) {
	query := `
		SELECT department_id, section_id, item_id, item_type, quantity, reserved, updated_at
		FROM stock_entries
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND item_id = $3`
	s, err := scanStockEntry(r.q.QueryRow(ctx, query, scope.DepartmentID, scope.SectionID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{Scope: scope, ItemID: itemID, Quantity: decimal.Zero, Reserved: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// ListByScope lista el stock de un scope ordenado por ítem.
func (r *StockRepo) ListByScope(ctx context.Context, scope entity.Scope) ([]*entity.StockEntry, error) {
	query := `
		SELECT department_id, section_id, item_id, item_type, quantity, reserved, updated_at
		FROM stock_entries
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2
		ORDER BY item_id`
	rows, err := r.q.Query(ctx, query, scope.DepartmentID, scope.SectionID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		s, err := scanStockEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ApplyChanges envía todos los cambios en un solo pgx.Batch (un round-trip).
// Debe ejecutarse dentro de una transacción: ante un faltante se devuelve *domain.StockError
// y el rollback del TxRunner descarta lo ya aplicado del lote.
func (r *StockRepo) ApplyChanges(ctx context.Context, changes []entity.StockChange) error {
	if len(changes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ch := range changes {
		if !ch.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
		sql := incrementStockSQL
		switch ch.Direction {
		case entity.MovementOut:
			sql = decrementStockSQL
		case entity.MovementIn:
		default:
			return domain.ErrInvalidInput
		}
		batch.Queue(sql,
			ch.Scope.DepartmentID, ch.Scope.SectionID, ch.ItemID, ch.Quantity,
			uuid.New().String(), string(ch.Reason), ch.Reference, string(ch.ItemType), ch.CreatedBy,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for _, ch := range changes {
		tag, err := br.Exec()
		if err != nil {
			if isCheckViolation(err) {
				return stockError(ch)
			}
			return fmt.Errorf("apply stock change %s %s: %w", ch.Direction, ch.ItemID, err)
		}
		if tag.RowsAffected() == 0 {
			return stockError(ch)
		}
	}
	return nil
}

// Reserve retiene qty solo si hay disponible (quantity - reserved >= qty).
func (r *StockRepo) Reserve(ctx context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error {
	query := `
		UPDATE stock_entries SET reserved = reserved + $4, updated_at = now()
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND item_id = $3
		  AND quantity - reserved >= $4`
	tag, err := r.q.Exec(ctx, query, scope.DepartmentID, scope.SectionID, itemID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.StockError{DepartmentID: scope.DepartmentID, SectionID: scope.Section(), ItemID: itemID, Requested: qty}
	}
	return nil
}

// Unreserve libera qty sin dejar reserved negativo.
func (r *StockRepo) Unreserve(ctx context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error {
	query := `
		UPDATE stock_entries SET reserved = GREATEST(0, reserved - $4), updated_at = now()
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND item_id = $3`
	if _, err := r.q.Exec(ctx, query, scope.DepartmentID, scope.SectionID, itemID, qty); err != nil {
		return fmt.Errorf("unreserve stock: %w", err)
	}
	return nil
}

func stockError(ch entity.StockChange) error {
	return &domain.StockError{
		DepartmentID: ch.Scope.DepartmentID,
		SectionID:    ch.Scope.Section(),
		ItemID:       ch.ItemID,
		Requested:    ch.Quantity,
	}
}

func scanStockEntry(row pgx.Row) (*entity.StockEntry, error) {
	var (
		s         entity.StockEntry
		sectionID *string
		itemType  string
	)
	if err := row.Scan(&s.Scope.DepartmentID, &sectionID, &s.ItemID, &itemType, &s.Quantity, &s.Reserved, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Scope.SectionID = sectionID
	s.ItemType = entity.ProductType(itemType)
	return &s, nil
}
