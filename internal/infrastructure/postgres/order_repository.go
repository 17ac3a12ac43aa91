package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const (
	orderColumns = `id, order_number, status, payment_status, subtotal, discount_total, tax, total,
		customer_ref, line_seq, created_by, created_at, updated_at`
	lineColumns = `id, order_id, line_number, product_id, product_type, product_name, department_id, section_id,
		quantity, unit_price, line_total, status, created_at, updated_at`
	fulfillmentColumns = `id, order_id, line_id, status, fulfilled_quantity, notes, fulfilled_by, fulfilled_at`
)

// OrderRepo implementación de OrderRepository. Cabecera, líneas, departamentos y registros de despacho.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera, líneas y departamentos en un único batch.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.OrderNumber, string(o.Status), string(o.PaymentStatus), o.Subtotal, o.DiscountTotal, o.Tax, o.Total,
		o.CustomerRef, o.LineSeq, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	for i := range o.Lines {
		queueInsertLine(batch, &o.Lines[i])
	}
	for _, d := range o.Departments {
		batch.Queue(`INSERT INTO order_departments (order_id, department_id, status) VALUES ($1, $2, $3)`,
			o.ID, d.DepartmentID, string(d.Status))
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return errors.Join(domain.ErrDuplicate, err)
			}
			return fmt.Errorf("insert order: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la orden completa sin bloquear.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.load(ctx, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT ... FOR UPDATE) hasta el fin de la transacción.
// Serializa los despachos concurrentes sobre la misma orden.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.load(ctx, id, true)
}

func (r *OrderRepo) load(ctx context.Context, id string, lock bool) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var (
		o             entity.Order
		status, paySt string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.OrderNumber, &status, &paySt, &o.Subtotal, &o.DiscountTotal,
		&o.Tax, &o.Total, &o.CustomerRef, &o.LineSeq, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	o.PaymentStatus = entity.PaymentStatus(paySt)

	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines

	rows, err := r.q.Query(ctx, `SELECT order_id, department_id, status FROM order_departments WHERE order_id = $1 ORDER BY department_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list order departments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			d  entity.OrderDepartment
			st string
		)
		if err := rows.Scan(&d.OrderID, &d.DepartmentID, &st); err != nil {
			return nil, fmt.Errorf("scan order department: %w", err)
		}
		d.Status = entity.OrderStatus(st)
		o.Departments = append(o.Departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY line_number`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []entity.OrderLine
	for rows.Next() {
		var (
			l                   entity.OrderLine
			productType, status string
			sectionID           *string
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNumber, &l.ProductID, &productType, &l.ProductName,
			&l.DepartmentID, &sectionID, &l.Quantity, &l.UnitPrice, &l.LineTotal, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		l.ProductType = entity.ProductType(productType)
		l.Status = entity.LineStatus(status)
		l.SectionID = sectionID
		list = append(list, l)
	}
	return list, rows.Err()
}

// UpdateHeader persiste estado, pago, totales y LineSeq.
func (r *OrderRepo) UpdateHeader(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, payment_status = $3, subtotal = $4, discount_total = $5, tax = $6, total = $7,
			line_seq = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, string(o.Status), string(o.PaymentStatus), o.Subtotal, o.DiscountTotal,
		o.Tax, o.Total, o.LineSeq, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertLine agrega una línea a una orden existente.
func (r *OrderRepo) InsertLine(ctx context.Context, l *entity.OrderLine) error {
	batch := &pgx.Batch{}
	queueInsertLine(batch, l)
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	if _, err := br.Exec(); err != nil {
		if isUniqueViolation(err) {
			return errors.Join(domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// UpdateLine persiste cantidad, total y estado de la línea.
func (r *OrderRepo) UpdateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `UPDATE order_lines SET quantity = $3, line_total = $4, status = $5, updated_at = $6 WHERE id = $1 AND order_id = $2`
	tag, err := r.q.Exec(ctx, query, l.ID, l.OrderID, l.Quantity, l.LineTotal, string(l.Status), l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLine elimina una línea.
func (r *OrderRepo) DeleteLine(ctx context.Context, orderID, lineID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM order_lines WHERE id = $1 AND order_id = $2`, lineID, orderID)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddDepartment asocia un departamento a la orden; si ya estaba asociado no hace nada.
func (r *OrderRepo) AddDepartment(ctx context.Context, orderID, departmentID string, status entity.OrderStatus) error {
	query := `
		INSERT INTO order_departments (order_id, department_id, status) VALUES ($1, $2, $3)
		ON CONFLICT (order_id, department_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, orderID, departmentID, string(status)); err != nil {
		return fmt.Errorf("add order department: %w", err)
	}
	return nil
}

// SetDepartmentsStatus sincroniza el estado de todas las asociaciones de la orden.
func (r *OrderRepo) SetDepartmentsStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	if _, err := r.q.Exec(ctx, `UPDATE order_departments SET status = $2 WHERE order_id = $1`, orderID, string(status)); err != nil {
		return fmt.Errorf("update order departments: %w", err)
	}
	return nil
}

// AppendFulfillment inserta un registro de despacho (append-only).
func (r *OrderRepo) AppendFulfillment(ctx context.Context, f *entity.FulfillmentRecord) error {
	query := `INSERT INTO fulfillment_records (` + fulfillmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, f.ID, f.OrderID, f.LineID, string(f.Status), f.FulfilledQuantity, f.Notes, f.FulfilledBy, f.FulfilledAt)
	if err != nil {
		return fmt.Errorf("insert fulfillment record: %w", err)
	}
	return nil
}

// ListFulfillments registros de una línea en orden cronológico.
func (r *OrderRepo) ListFulfillments(ctx context.Context, lineID string) ([]*entity.FulfillmentRecord, error) {
	query := `SELECT ` + fulfillmentColumns + ` FROM fulfillment_records WHERE line_id = $1 ORDER BY fulfilled_at, id`
	rows, err := r.q.Query(ctx, query, lineID)
	if err != nil {
		return nil, fmt.Errorf("list fulfillment records: %w", err)
	}
	defer rows.Close()
	var list []*entity.FulfillmentRecord
	for rows.Next() {
		var (
			f  entity.FulfillmentRecord
			st string
		)
		if err := rows.Scan(&f.ID, &f.OrderID, &f.LineID, &st, &f.FulfilledQuantity, &f.Notes, &f.FulfilledBy, &f.FulfilledAt); err != nil {
			return nil, fmt.Errorf("scan fulfillment record: %w", err)
		}
		f.Status = entity.LineStatus(st)
		list = append(list, &f)
	}
	return list, rows.Err()
}

// SummarizeDepartment agrega las líneas del departamento (excluye órdenes canceladas y reembolsadas).
func (r *OrderRepo) SummarizeDepartment(ctx context.Context, departmentID string) (*entity.DepartmentStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE l.status <> $2),
			COUNT(*) FILTER (WHERE l.status = $2),
			COALESCE(SUM(l.line_total) FILTER (WHERE l.status = $2), 0)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.department_id = $1 AND o.status NOT IN ($3, $4)`
	s := &entity.DepartmentStats{DepartmentID: departmentID}
	err := r.q.QueryRow(ctx, query, departmentID, string(entity.LineFulfilled),
		string(entity.OrderCancelled), string(entity.OrderRefunded),
	).Scan(&s.OpenLines, &s.FulfilledLines, &s.FulfilledRevenue)
	if err != nil {
		return nil, fmt.Errorf("summarize department: %w", err)
	}
	return s, nil
}

func queueInsertLine(batch *pgx.Batch, l *entity.OrderLine) {
	batch.Queue(`INSERT INTO order_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		l.ID, l.OrderID, l.LineNumber, l.ProductID, string(l.ProductType), l.ProductName, l.DepartmentID, l.SectionID,
		l.Quantity, l.UnitPrice, l.LineTotal, string(l.Status), l.CreatedAt, l.UpdatedAt,
	)
}
