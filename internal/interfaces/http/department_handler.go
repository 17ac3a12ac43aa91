package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
)

// DepartmentHandler directorio de departamentos y secciones (protegido).
type DepartmentHandler struct {
	uc    *directory.UseCase
	stats *stats.UseCase
}

// NewDepartmentHandler construye el handler.
func NewDepartmentHandler(uc *directory.UseCase, stats *stats.UseCase) *DepartmentHandler {
	return &DepartmentHandler{uc: uc, stats: stats}
}

// Create godoc
// @Summary      Crear departamento
// @Tags         departments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateDepartmentRequest  true  "código, nombre, padre opcional"
// @Success      201   {object}  dto.DepartmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/departments [post]
func (h *DepartmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDepartmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateDepartment(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar departamentos
// @Tags         departments
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DepartmentListResponse
// @Router       /api/departments [get]
func (h *DepartmentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSection godoc
// @Summary      Crear sección
// @Tags         departments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID del departamento"
// @Param        body  body      dto.CreateSectionRequest  true  "código y nombre"
// @Success      201   {object}  dto.SectionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/departments/{id}/sections [post]
func (h *DepartmentHandler) CreateSection(c *fiber.Ctx) error {
	var in dto.CreateSectionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSection(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Resolve godoc
// @Summary      Resolver código de scope
// @Tags         departments
// @Security     Bearer
// @Produce      json
// @Param        code  query     string  true  "DEPT o DEPT:section"
// @Success      200   {object}  dto.ScopeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/departments/resolve [get]
func (h *DepartmentHandler) Resolve(c *fiber.Ctx) error {
	out, err := h.uc.ResolveScope(c.UserContext(), c.Query("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Resumen operativo del departamento
// @Tags         departments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del departamento"
// @Success      200  {object}  dto.DepartmentStatsResponse
// @Router       /api/departments/{id}/stats [get]
func (h *DepartmentHandler) Stats(c *fiber.Ctx) error {
	out, err := h.stats.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
