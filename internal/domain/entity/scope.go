package entity

import (
	"strings"

	"github.com/jhoicas/hospitality-ops/internal/domain"
)

// ScopeSeparator separa departamento y sección en los códigos legibles ("BAR:terraza").
const ScopeSeparator = ":"

// Scope identifica dónde se cuenta el stock: un departamento y, opcionalmente, una de sus secciones.
// SectionID nil significa nivel departamento (fuente de traslados); con sección es punto de consumo.
type Scope struct {
	DepartmentID string
	SectionID    *string
}

// DepartmentScope construye un scope de nivel departamento.
func DepartmentScope(departmentID string) Scope {
	return Scope{DepartmentID: departmentID}
}

// SectionScope construye un scope de sección. Con sectionID vacío equivale a DepartmentScope.
func SectionScope(departmentID, sectionID string) Scope {
	if sectionID == "" {
		return DepartmentScope(departmentID)
	}
	s := sectionID
	return Scope{DepartmentID: departmentID, SectionID: &s}
}

// IsSection indica si el scope apunta a una sección.
func (s Scope) IsSection() bool {
	return s.SectionID != nil && *s.SectionID != ""
}

// Section devuelve el ID de sección o "" para nivel departamento.
func (s Scope) Section() string {
	if s.SectionID == nil {
		return ""
	}
	return *s.SectionID
}

// Key devuelve una clave estable "dept" o "dept:section" (mapas en memoria, logs, caché).
func (s Scope) Key() string {
	if !s.IsSection() {
		return s.DepartmentID
	}
	return s.DepartmentID + ScopeSeparator + *s.SectionID
}

// Equal compara dos scopes por valor.
func (s Scope) Equal(o Scope) bool {
	return s.DepartmentID == o.DepartmentID && s.Section() == o.Section()
}

// Department devuelve el scope de nivel departamento que contiene a s.
func (s Scope) Department() Scope {
	return DepartmentScope(s.DepartmentID)
}

// Validate exige un departamento.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.DepartmentID) == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// ParseScopeCode separa un código "DEPT" o "DEPT:section" en sus partes.
func ParseScopeCode(code string) (departmentCode, sectionCode string, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", "", domain.ErrInvalidInput
	}
	parts := strings.Split(code, ScopeSeparator)
	switch len(parts) {
	case 1:
		return parts[0], "", nil
	case 2:
		dept := strings.TrimSpace(parts[0])
		sec := strings.TrimSpace(parts[1])
		if dept == "" || sec == "" {
			return "", "", domain.ErrInvalidInput
		}
		return dept, sec, nil
	default:
		return "", "", domain.ErrInvalidInput
	}
}
