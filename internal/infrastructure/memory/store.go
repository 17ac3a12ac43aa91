// Package memory implementa todos los puertos de repositorio en memoria.
// Cada transacción trabaja sobre una copia del estado y la publica en Commit;
// si otra transacción publicó antes, el commit falla como conflicto transitorio.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var errWriteConflict = errors.New("memory: otra transacción modificó el estado")

type state struct {
	version      uint64
	stock        map[string]*entity.StockEntry
	movements    []*entity.MovementRecord
	reservations map[string]*entity.Reservation
	resOrder     []string
	orders       map[string]*entity.Order
	fulfillments []*entity.FulfillmentRecord
	transfers    map[string]*entity.Transfer
	extras       map[string]*entity.Extra
	allocations  map[string]*entity.ExtraAllocation
	departments  map[string]*entity.Department
	sections     map[string]*entity.Section
	stats        map[string]*entity.DepartmentStats
}

func newState() *state {
	return &state{
		stock:        map[string]*entity.StockEntry{},
		reservations: map[string]*entity.Reservation{},
		orders:       map[string]*entity.Order{},
		transfers:    map[string]*entity.Transfer{},
		extras:       map[string]*entity.Extra{},
		allocations:  map[string]*entity.ExtraAllocation{},
		departments:  map[string]*entity.Department{},
		sections:     map[string]*entity.Section{},
		stats:        map[string]*entity.DepartmentStats{},
	}
}

// clone copia profunda; las transacciones nunca comparten punteros con el estado publicado.
func (s *state) clone() *state {
	c := newState()
	c.version = s.version
	for k, v := range s.stock {
		e := *v
		e.Scope = cloneScope(v.Scope)
		c.stock[k] = &e
	}
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.reservations {
		r := *v
		r.Scope = cloneScope(v.Scope)
		c.reservations[k] = &r
	}
	c.resOrder = append(c.resOrder, s.resOrder...)
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	c.fulfillments = append(c.fulfillments, s.fulfillments...)
	for k, v := range s.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.extras {
		e := *v
		c.extras[k] = &e
	}
	for k, v := range s.allocations {
		a := *v
		a.Scope = cloneScope(v.Scope)
		c.allocations[k] = &a
	}
	for k, v := range s.departments {
		d := *v
		c.departments[k] = &d
	}
	for k, v := range s.sections {
		sec := *v
		c.sections[k] = &sec
	}
	for k, v := range s.stats {
		st := *v
		c.stats[k] = &st
	}
	return c
}

// Store estado compartido en memoria. Usar New.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Run ejecuta fn con repositorios atados a una copia del estado y la publica si fn no falla.
// Un commit concurrente gana; el perdedor recibe un error transitorio y no publica nada.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Stores) error) error {
	s.mu.Lock()
	base := s.st.version
	work := s.st.clone()
	s.mu.Unlock()

	v := &view{store: s, tx: work}
	if err := fn(v.stores()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Transient(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.version != base {
		return domain.Transient(errWriteConflict)
	}
	work.version = base + 1
	s.st = work
	return nil
}

// Stores repositorios fuera de transacción (cada llamada es atómica por sí misma).
func (s *Store) Stores() repository.Stores {
	return (&view{store: s}).stores()
}

// Departments repositorio de directorio (fuera de transacción).
func (s *Store) Departments() repository.DepartmentRepository {
	return &departmentRepo{view{store: s}}
}

// Stats repositorio de estadísticas (fuera de transacción).
func (s *Store) Stats() repository.StatsRepository {
	return &statsRepo{view{store: s}}
}

// view resuelve sobre qué estado opera un repositorio: la copia de la tx o el publicado.
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	// Escritura fuera de tx: se aplica sobre una copia y se publica solo si no falla.
	work := v.store.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	work.version = v.store.st.version + 1
	v.store.st = work
	return nil
}

func (v view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	fn(v.store.st)
}

func (v view) now() time.Time { return v.store.now() }

func (v *view) stores() repository.Stores {
	return repository.Stores{
		Stock:        &stockRepo{*v},
		Movements:    &movementRepo{*v},
		Reservations: &reservationRepo{*v},
		Orders:       &orderRepo{*v},
		Transfers:    &transferRepo{*v},
		Extras:       &extraRepo{*v},
	}
}

func cloneScope(s entity.Scope) entity.Scope {
	return entity.SectionScope(s.DepartmentID, s.Section())
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = make([]entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		c.Lines[i] = l
		if l.SectionID != nil {
			sec := *l.SectionID
			c.Lines[i].SectionID = &sec
		}
	}
	c.Departments = append([]entity.OrderDepartment(nil), o.Departments...)
	return &c
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.From = cloneScope(t.From)
	c.To = cloneScope(t.To)
	c.Items = append([]entity.TransferItem(nil), t.Items...)
	return &c
}

func scopedKey(scope entity.Scope, id string) string {
	return scope.Key() + "|" + id
}
