package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.ExtraRepository = (*ExtraRepo)(nil)

// ExtraRepo implementación de ExtraRepository (catálogo y asignaciones por scope).
type ExtraRepo struct {
	q Querier
}

// NewExtraRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExtraRepository(q Querier) *ExtraRepo {
	return &ExtraRepo{q: q}
}

// Create inserta un extra. Nombre duplicado → ErrDuplicate.
func (r *ExtraRepo) Create(ctx context.Context, e *entity.Extra) error {
	_, err := r.q.Exec(ctx, `INSERT INTO extras (id, name, track_quantity, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.TrackQuantity, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Join(domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert extra: %w", err)
	}
	return nil
}

// GetByID obtiene un extra por ID.
func (r *ExtraRepo) GetByID(ctx context.Context, id string) (*entity.Extra, error) {
	var e entity.Extra
	err := r.q.QueryRow(ctx, `SELECT id, name, track_quantity, created_at FROM extras WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.TrackQuantity, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get extra: %w", err)
	}
	return &e, nil
}

// GetAllocation devuelve la asignación del scope o una en cero.
func (r *ExtraRepo) GetAllocation(ctx context.Context, scope entity.Scope, extraID string) (*entity.ExtraAllocation, error) {
	query := `
		SELECT quantity, updated_at FROM extra_allocations
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND extra_id = $3`
	a := &entity.ExtraAllocation{Scope: scope, ExtraID: extraID}
	err := r.q.QueryRow(ctx, query, scope.DepartmentID, scope.SectionID, extraID).Scan(&a.Quantity, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.Quantity = decimal.Zero
			return a, nil
		}
		return nil, fmt.Errorf("get extra allocation: %w", err)
	}
	return a, nil
}

// ListAllocations asignaciones de un scope.
func (r *ExtraRepo) ListAllocations(ctx context.Context, scope entity.Scope) ([]*entity.ExtraAllocation, error) {
	query := `
		SELECT extra_id, quantity, updated_at FROM extra_allocations
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2
		ORDER BY extra_id`
	rows, err := r.q.Query(ctx, query, scope.DepartmentID, scope.SectionID)
	if err != nil {
		return nil, fmt.Errorf("list extra allocations: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExtraAllocation
	for rows.Next() {
		a := &entity.ExtraAllocation{Scope: scope}
		if err := rows.Scan(&a.ExtraID, &a.Quantity, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan extra allocation: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// AddAllocation upsert incremental.
func (r *ExtraRepo) AddAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	query := `
		INSERT INTO extra_allocations (department_id, section_id, extra_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (department_id, section_id, extra_id)
		DO UPDATE SET quantity = extra_allocations.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, scope.DepartmentID, scope.SectionID, extraID, qty); err != nil {
		return fmt.Errorf("add extra allocation: %w", err)
	}
	return nil
}

// SubtractAllocation resta solo si alcanza; si no, *domain.StockError.
func (r *ExtraRepo) SubtractAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	query := `
		UPDATE extra_allocations SET quantity = quantity - $4, updated_at = now()
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2 AND extra_id = $3 AND quantity >= $4`
	tag, err := r.q.Exec(ctx, query, scope.DepartmentID, scope.SectionID, extraID, qty)
	if err != nil {
		return fmt.Errorf("subtract extra allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.StockError{DepartmentID: scope.DepartmentID, SectionID: scope.Section(), ItemID: extraID, Requested: qty}
	}
	return nil
}

// SetAllocation fija la cantidad.
func (r *ExtraRepo) SetAllocation(ctx context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	query := `
		INSERT INTO extra_allocations (department_id, section_id, extra_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (department_id, section_id, extra_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, scope.DepartmentID, scope.SectionID, extraID, qty); err != nil {
		return fmt.Errorf("set extra allocation: %w", err)
	}
	return nil
}
