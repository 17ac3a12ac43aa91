package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta cabecera e ítems en un batch.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transfers (id, from_department_id, to_department_id, to_section_id, status, notes, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.From.DepartmentID, t.To.DepartmentID, t.To.SectionID, string(t.Status), t.Notes, t.RequestedBy, t.CreatedAt,
	)
	for _, it := range t.Items {
		batch.Queue(`INSERT INTO transfer_items (transfer_id, position, product_type, product_id, quantity) VALUES ($1, $2, $3, $4, $5)`,
			t.ID, it.Position, string(it.ProductType), it.ProductID, it.Quantity)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el traslado con sus ítems por posición.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	query := `
		SELECT id, from_department_id, to_department_id, to_section_id, status, notes, requested_by, approved_by,
			created_at, approved_at, completed_at
		FROM transfers WHERE id = $1`
	var (
		t         entity.Transfer
		sectionID *string
		status    string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&t.ID, &t.From.DepartmentID, &t.To.DepartmentID, &sectionID, &status,
		&t.Notes, &t.RequestedBy, &t.ApprovedBy, &t.CreatedAt, &t.ApprovedAt, &t.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	t.To.SectionID = sectionID
	t.Status = entity.TransferStatus(status)

	rows, err := r.q.Query(ctx, `SELECT position, product_type, product_id, quantity FROM transfer_items WHERE transfer_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it  entity.TransferItem
			typ string
		)
		if err := rows.Scan(&it.Position, &typ, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		it.ProductType = entity.ProductType(typ)
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus transición condicional: solo aplica si el estado actual es from.
// approved fija approved_by/approved_at; completed fija completed_at.
func (r *TransferRepo) UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, by string, at time.Time) error {
	query := `
		UPDATE transfers SET status = $3,
			approved_by  = CASE WHEN $3 = 'approved' THEN $4 ELSE approved_by END,
			approved_at  = CASE WHEN $3 = 'approved' THEN $5 ELSE approved_at END,
			completed_at = CASE WHEN $3 = 'completed' THEN $5 ELSE completed_at END
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, string(from), string(to), by, at)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check transfer: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// ClaimStale reasigna un traslado approved cuya aprobación es anterior a before. El UPDATE
// condicional hace que entre dos reanudaciones concurrentes solo una gane.
func (r *TransferRepo) ClaimStale(ctx context.Context, id string, before time.Time, by string, at time.Time) error {
	query := `
		UPDATE transfers SET approved_by = $3, approved_at = $4
		WHERE id = $1 AND status = 'approved' AND approved_at < $2`
	tag, err := r.q.Exec(ctx, query, id, before, by, at)
	if err != nil {
		return fmt.Errorf("claim transfer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check transfer: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
