// Package stats recalcula el resumen operativo por departamento después de cada despacho.
package stats

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// ErrNotObtained el lock del departamento lo tiene otro proceso.
var ErrNotObtained = errors.New("stats: lock no obtenido")

// RefreshTimeout tope de un recálculo lanzado con Schedule.
const RefreshTimeout = 30 * time.Second

// Locker serializa el recálculo por departamento entre instancias.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// LocalLocker serializa por clave dentro del proceso (una sola instancia o Redis no configurado).
// Obtain espera a que se libere la clave o a que venza ctx; el ttl no aplica.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

// NewLocalLocker construye un LocalLocker vacío.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: map[string]chan struct{}{}}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	slot, ok := l.keys[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.keys[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-slot })
		return nil
	}, nil
}

// AncestorLookup devuelve los padres de un departamento (directory.UseCase).
type AncestorLookup interface {
	Ancestors(ctx context.Context, departmentID string) ([]string, error)
}

// UseCase rollup de estadísticas por departamento.
//
// Un padre suma sus propias líneas más las de sus hijos directos (que a su vez incluyen a los suyos),
// por eso se recalcula primero el departamento afectado y después sus ancestros.
type UseCase struct {
	orders      repository.OrderRepository
	departments repository.DepartmentRepository
	stats       repository.StatsRepository
	ancestors   AncestorLookup
	locker      Locker
	lockTTL     time.Duration
	log         *logger.Logger
	inflight    sync.WaitGroup
}

// NewUseCase construye el caso de uso. locker nil usa un LocalLocker.
func NewUseCase(
	orders repository.OrderRepository,
	departments repository.DepartmentRepository,
	stats repository.StatsRepository,
	ancestors AncestorLookup,
	locker Locker,
	lockTTL time.Duration,
	log *logger.Logger,
) *UseCase {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &UseCase{
		orders:      orders,
		departments: departments,
		stats:       stats,
		ancestors:   ancestors,
		locker:      locker,
		lockTTL:     lockTTL,
		log:         log,
	}
}

// Schedule lanza Refresh en segundo plano con un contexto desacoplado de la petición y acotado
// por RefreshTimeout. El caller no espera el recálculo.
func (uc *UseCase) Schedule(ctx context.Context, departmentIDs []string) {
	if len(departmentIDs) == 0 {
		return
	}
	ids := append([]string(nil), departmentIDs...)
	bg := context.WithoutCancel(ctx)
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		ctx, cancel := context.WithTimeout(bg, RefreshTimeout)
		defer cancel()
		uc.Refresh(ctx, ids)
	}()
}

// Wait bloquea hasta que terminen los recálculos lanzados con Schedule.
func (uc *UseCase) Wait() {
	uc.inflight.Wait()
}

// Refresh recalcula los departamentos indicados y sus ancestros, de los más profundos a la raíz.
// Si el lock de un departamento está tomado se hace una segunda pasada desde ese punto de la
// cadena, para no dejar el resumen con lo que leyó otro proceso antes de este commit.
// Nunca falla hacia el caller: los errores se registran para reconciliación.
func (uc *UseCase) Refresh(ctx context.Context, departmentIDs []string) {
	chain := uc.chain(ctx, departmentIDs)
	retryFrom := uc.recalculateChain(ctx, chain, true)
	if retryFrom >= 0 {
		uc.recalculateChain(ctx, chain[retryFrom:], false)
	}
}

// recalculateChain devuelve el índice del primer departamento cuyo lock estaba tomado, o -1.
func (uc *UseCase) recalculateChain(ctx context.Context, chain []string, firstPass bool) int {
	busy := -1
	for i, id := range chain {
		err := uc.recalculate(ctx, id)
		switch {
		case err == nil:
		case firstPass && errors.Is(err, ErrNotObtained):
			if busy < 0 {
				busy = i
			}
		default:
			uc.log.Error().Err(err).Str("department_id", id).Msg("rollup de estadísticas falló")
		}
	}
	return busy
}

// chain ordena los departamentos y sus ancestros del más profundo a la raíz.
func (uc *UseCase) chain(ctx context.Context, departmentIDs []string) []string {
	depth := map[string]int{}
	for _, id := range departmentIDs {
		parents, err := uc.ancestors.Ancestors(ctx, id)
		if err != nil {
			uc.log.Warn().Err(err).Str("department_id", id).Msg("no se pudieron obtener los departamentos padre")
			parents = nil
		}
		if cur, ok := depth[id]; !ok || len(parents) > cur {
			depth[id] = len(parents)
		}
		for i, p := range parents {
			d := len(parents) - 1 - i
			if cur, ok := depth[p]; !ok || d > cur {
				depth[p] = d
			}
		}
	}
	chain := make([]string, 0, len(depth))
	for id := range depth {
		chain = append(chain, id)
	}
	sort.Slice(chain, func(i, j int) bool {
		if depth[chain[i]] != depth[chain[j]] {
			return depth[chain[i]] > depth[chain[j]]
		}
		return chain[i] < chain[j]
	})
	return chain
}

func (uc *UseCase) recalculate(ctx context.Context, departmentID string) error {
	release, err := uc.locker.Obtain(ctx, "stats:department:"+departmentID, uc.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("department_id", departmentID).Msg("liberar lock de estadísticas")
		}
	}()

	summary, err := uc.orders.SummarizeDepartment(ctx, departmentID)
	if err != nil {
		return err
	}
	children, err := uc.departments.ListChildren(ctx, departmentID)
	if err != nil {
		return err
	}
	for _, child := range children {
		cs, err := uc.stats.Get(ctx, child.ID)
		if err != nil {
			return err
		}
		summary.OpenLines += cs.OpenLines
		summary.FulfilledLines += cs.FulfilledLines
		summary.FulfilledRevenue += cs.FulfilledRevenue
	}
	summary.DepartmentID = departmentID
	summary.UpdatedAt = time.Now()
	return uc.stats.Upsert(ctx, summary)
}

// Get devuelve el último resumen guardado del departamento.
func (uc *UseCase) Get(ctx context.Context, departmentID string) (*dto.DepartmentStatsResponse, error) {
	if _, err := uc.departments.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	s, err := uc.stats.Get(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return toStatsResponse(s), nil
}

func toStatsResponse(s *entity.DepartmentStats) *dto.DepartmentStatsResponse {
	return &dto.DepartmentStatsResponse{
		DepartmentID:     s.DepartmentID,
		OpenLines:        s.OpenLines,
		FulfilledLines:   s.FulfilledLines,
		FulfilledRevenue: s.FulfilledRevenue,
		UpdatedAt:        s.UpdatedAt,
	}
}
