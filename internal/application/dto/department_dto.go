package dto

import "time"

// CreateDepartmentRequest entrada para crear un departamento.
type CreateDepartmentRequest struct {
	Code     string  `json:"code" validate:"required,min=1,max=40"`
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateSectionRequest entrada para crear una sección dentro de un departamento.
type CreateSectionRequest struct {
	Code string `json:"code" validate:"required,min=1,max=40"`
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// DepartmentResponse salida de un departamento con sus secciones.
type DepartmentResponse struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id,omitempty"`
	Sections  []SectionResponse `json:"sections"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SectionResponse salida de una sección.
type SectionResponse struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
}

// DepartmentListResponse lista de departamentos.
type DepartmentListResponse struct {
	Items []DepartmentResponse `json:"items"`
}

// ScopeResponse scope resuelto a partir de un código "DEPT" o "DEPT:section".
type ScopeResponse struct {
	Code         string  `json:"code"`
	DepartmentID string  `json:"department_id"`
	SectionID    *string `json:"section_id,omitempty"`
}

// DepartmentStatsResponse resumen operativo de un departamento.
type DepartmentStatsResponse struct {
	DepartmentID     string    `json:"department_id"`
	OpenLines        int       `json:"open_lines"`
	FulfilledLines   int       `json:"fulfilled_lines"`
	FulfilledRevenue int64     `json:"fulfilled_revenue"`
	UpdatedAt        time.Time `json:"updated_at"`
}
