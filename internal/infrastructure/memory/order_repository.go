package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ v view }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[o.ID] = cloneOrder(o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	r.v.read(func(st *state) {
		if o, ok := st.orders[id]; ok {
			out = cloneOrder(o)
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	sort.Slice(out.Lines, func(i, j int) bool { return out.Lines[i].LineNumber < out.Lines[j].LineNumber })
	return out, nil
}

// GetForUpdate en memoria equivale a GetByID: el aislamiento lo da la copia de la tx.
func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateHeader(_ context.Context, o *entity.Order) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = o.Status
		cur.PaymentStatus = o.PaymentStatus
		cur.Subtotal = o.Subtotal
		cur.DiscountTotal = o.DiscountTotal
		cur.Tax = o.Tax
		cur.Total = o.Total
		cur.LineSeq = o.LineSeq
		cur.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *orderRepo) InsertLine(_ context.Context, l *entity.OrderLine) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[l.OrderID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, cur := range o.Lines {
			if cur.ID == l.ID || cur.LineNumber == l.LineNumber {
				return domain.ErrDuplicate
			}
		}
		o.Lines = append(o.Lines, *l)
		return nil
	})
}

func (r *orderRepo) UpdateLine(_ context.Context, l *entity.OrderLine) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[l.OrderID]
		if !ok {
			return domain.ErrNotFound
		}
		for i := range o.Lines {
			if o.Lines[i].ID == l.ID {
				o.Lines[i] = *l
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *orderRepo) DeleteLine(_ context.Context, orderID, lineID string) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *orderRepo) AddDepartment(_ context.Context, orderID, departmentID string, status entity.OrderStatus) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, d := range o.Departments {
			if d.DepartmentID == departmentID {
				return nil
			}
		}
		o.Departments = append(o.Departments, entity.OrderDepartment{OrderID: orderID, DepartmentID: departmentID, Status: status})
		return nil
	})
}

func (r *orderRepo) SetDepartmentsStatus(_ context.Context, orderID string, status entity.OrderStatus) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		for i := range o.Departments {
			o.Departments[i].Status = status
		}
		return nil
	})
}

func (r *orderRepo) AppendFulfillment(_ context.Context, rec *entity.FulfillmentRecord) error {
	return r.v.do(func(st *state) error {
		c := *rec
		st.fulfillments = append(st.fulfillments, &c)
		return nil
	})
}

func (r *orderRepo) ListFulfillments(_ context.Context, lineID string) ([]*entity.FulfillmentRecord, error) {
	var out []*entity.FulfillmentRecord
	r.v.read(func(st *state) {
		for _, f := range st.fulfillments {
			if f.LineID == lineID {
				c := *f
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *orderRepo) SummarizeDepartment(_ context.Context, departmentID string) (*entity.DepartmentStats, error) {
	s := &entity.DepartmentStats{DepartmentID: departmentID}
	r.v.read(func(st *state) {
		for _, o := range st.orders {
			if o.Status.IsClosed() {
				continue
			}
			for _, l := range o.Lines {
				if l.DepartmentID != departmentID {
					continue
				}
				if l.Status == entity.LineFulfilled {
					s.FulfilledLines++
					s.FulfilledRevenue += l.LineTotal
				} else {
					s.OpenLines++
				}
			}
		}
	})
	s.UpdatedAt = r.v.now()
	return s, nil
}
