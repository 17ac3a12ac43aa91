// Package directory resuelve códigos de departamento/sección a scopes y administra el directorio.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// ScopeCache caché de código → scope. Un fallo de caché nunca bloquea la resolución.
type ScopeCache interface {
	Get(ctx context.Context, code string) (entity.Scope, bool, error)
	Set(ctx context.Context, code string, scope entity.Scope) error
}

// NopCache caché deshabilitada (Redis no configurado).
type NopCache struct{}

func (NopCache) Get(context.Context, string) (entity.Scope, bool, error) { return entity.Scope{}, false, nil }
func (NopCache) Set(context.Context, string, entity.Scope) error         { return nil }

// UseCase directorio de departamentos y secciones.
type UseCase struct {
	repo  repository.DepartmentRepository
	cache ScopeCache
	log   *logger.Logger
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(repo repository.DepartmentRepository, cache ScopeCache, log *logger.Logger) *UseCase {
	if cache == nil {
		cache = NopCache{}
	}
	return &UseCase{repo: repo, cache: cache, log: log}
}

// Resolve convierte "DEPT" o "DEPT:section" en un Scope. ErrNotFound si el código no existe.
func (uc *UseCase) Resolve(ctx context.Context, code string) (entity.Scope, error) {
	deptCode, sectionCode, err := entity.ParseScopeCode(code)
	if err != nil {
		return entity.Scope{}, err
	}
	key := deptCode
	if sectionCode != "" {
		key += entity.ScopeSeparator + sectionCode
	}

	if scope, ok, err := uc.cache.Get(ctx, key); err != nil {
		uc.log.Warn().Err(err).Str("code", key).Msg("caché de scopes no disponible, se consulta la BD")
	} else if ok {
		return scope, nil
	}

	dept, err := uc.repo.GetByCode(ctx, deptCode)
	if err != nil {
		return entity.Scope{}, err
	}
	scope := entity.DepartmentScope(dept.ID)
	if sectionCode != "" {
		sec, err := uc.repo.GetSectionByCode(ctx, dept.ID, sectionCode)
		if err != nil {
			return entity.Scope{}, err
		}
		scope = entity.SectionScope(dept.ID, sec.ID)
	}

	if err := uc.cache.Set(ctx, key, scope); err != nil {
		uc.log.Warn().Err(err).Str("code", key).Msg("no se pudo guardar el scope en caché")
	}
	return scope, nil
}

// ResolveScope como Resolve pero devuelve el DTO de salida.
func (uc *UseCase) ResolveScope(ctx context.Context, code string) (*dto.ScopeResponse, error) {
	scope, err := uc.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	return &dto.ScopeResponse{Code: code, DepartmentID: scope.DepartmentID, SectionID: scope.SectionID}, nil
}

// CreateDepartment crea un departamento; ParentID debe existir si se indica.
func (uc *UseCase) CreateDepartment(ctx context.Context, in dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" || strings.Contains(code, entity.ScopeSeparator) {
		return nil, domain.ErrInvalidInput
	}
	if in.ParentID != nil {
		if _, err := uc.repo.GetByID(ctx, *in.ParentID); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	d := &entity.Department{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return toDepartmentResponse(d, nil), nil
}

// CreateSection crea una sección en el departamento indicado.
func (uc *UseCase) CreateSection(ctx context.Context, departmentID string, in dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" || strings.Contains(code, entity.ScopeSeparator) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.repo.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	s := &entity.Section{
		ID:           uuid.New().String(),
		DepartmentID: departmentID,
		Code:         code,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.CreateSection(ctx, s); err != nil {
		return nil, err
	}
	out := toSectionResponse(s)
	return &out, nil
}

// List lista los departamentos con sus secciones.
func (uc *UseCase) List(ctx context.Context) (*dto.DepartmentListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DepartmentResponse, 0, len(list))
	for _, d := range list {
		sections, err := uc.repo.ListSections(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toDepartmentResponse(d, sections))
	}
	return &dto.DepartmentListResponse{Items: items}, nil
}

// Ancestors devuelve los IDs de los padres de departmentID, del más cercano al más lejano.
// Corta si detecta un ciclo.
func (uc *UseCase) Ancestors(ctx context.Context, departmentID string) ([]string, error) {
	var out []string
	seen := map[string]bool{departmentID: true}
	current := departmentID
	for {
		d, err := uc.repo.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return out, nil
			}
			return nil, err
		}
		if d.ParentID == nil || seen[*d.ParentID] {
			return out, nil
		}
		seen[*d.ParentID] = true
		out = append(out, *d.ParentID)
		current = *d.ParentID
	}
}

func toDepartmentResponse(d *entity.Department, sections []*entity.Section) *dto.DepartmentResponse {
	out := &dto.DepartmentResponse{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		ParentID:  d.ParentID,
		Sections:  make([]dto.SectionResponse, 0, len(sections)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, s := range sections {
		out.Sections = append(out.Sections, toSectionResponse(s))
	}
	return out
}

func toSectionResponse(s *entity.Section) dto.SectionResponse {
	return dto.SectionResponse{ID: s.ID, DepartmentID: s.DepartmentID, Code: s.Code, Name: s.Name}
}
