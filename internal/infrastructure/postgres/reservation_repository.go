package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, order_id, line_id, item_id, department_id, section_id, quantity, consumed, status, created_at, updated_at`

// ReservationRepo implementación de ReservationRepository.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create inserta la reserva. El ajuste de stock_entries.reserved lo hace StockRepo.Reserve.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.OrderID, res.LineID, res.ItemID, res.Scope.DepartmentID, res.Scope.SectionID,
		res.Quantity, res.Consumed, string(res.Status), res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// Update persiste consumo y estado de forma condicional: la fila debe seguir reserved y con el
// consumed leído. Cero filas significa que otra transacción la cambió.
func (r *ReservationRepo) Update(ctx context.Context, res *entity.Reservation, prevConsumed decimal.Decimal) error {
	query := `
		UPDATE reservations SET consumed = $2, status = $3, updated_at = $4
		WHERE id = $1 AND status = $5 AND consumed = $6`
	tag, err := r.q.Exec(ctx, query, res.ID, res.Consumed, string(res.Status), res.UpdatedAt,
		string(entity.ReservationReserved), prevConsumed)
	if err != nil {
		return fmt.Errorf("update reservation: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.Transient(fmt.Errorf("reserva %s modificada por otra transacción", res.ID))
	}
	return nil
}

// ListOpenByOrder reservas en estado reserved, en orden de creación, con FOR UPDATE: un despacho
// y una liberación concurrentes de la misma orden se serializan sobre estas filas.
func (r *ReservationRepo) ListOpenByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE order_id = $1 AND status = $2
		ORDER BY created_at, id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, orderID, string(entity.ReservationReserved))
	if err != nil {
		return nil, fmt.Errorf("list open reservations: %w", err)
	}
	return collectReservations(rows)
}

// ListByOrder todas las reservas de la orden.
func (r *ReservationRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE order_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var (
			res       entity.Reservation
			sectionID *string
			status    string
		)
		if err := rows.Scan(&res.ID, &res.OrderID, &res.LineID, &res.ItemID, &res.Scope.DepartmentID, &sectionID,
			&res.Quantity, &res.Consumed, &status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.Scope.SectionID = sectionID
		res.Status = entity.ReservationStatus(status)
		list = append(list, &res)
	}
	return list, rows.Err()
}
