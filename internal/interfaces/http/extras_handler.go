package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/extras"
)

// ExtrasHandler catálogo y asignación de extras (protegido).
type ExtrasHandler struct {
	uc       *extras.UseCase
	resolver ScopeResolver
}

// NewExtrasHandler construye el handler.
func NewExtrasHandler(uc *extras.UseCase, resolver ScopeResolver) *ExtrasHandler {
	return &ExtrasHandler{uc: uc, resolver: resolver}
}

// Create godoc
// @Summary      Crear extra
// @Tags         extras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateExtraRequest  true  "nombre y modo de seguimiento"
// @Success      201   {object}  dto.ExtraResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/extras [post]
func (h *ExtrasHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExtraRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	e, err := h.uc.CreateExtra(c.UserContext(), in.Name, in.TrackQuantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toExtraResponse(e))
}

// Allocate godoc
// @Summary      Asignar extra a un scope
// @Tags         extras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AllocateExtraRequest  true  "scope, extra, cantidad"
// @Success      200   {object}  dto.ExtraAllocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/extras/allocations [post]
func (h *ExtrasHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateExtraRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	scope, err := h.resolver.Resolve(c.UserContext(), in.Scope)
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.uc.Allocate(c.UserContext(), scope, in.ExtraID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAllocationResponse(a))
}

// ListAllocations godoc
// @Summary      Extras asignados a un scope
// @Tags         extras
// @Security     Bearer
// @Produce      json
// @Param        scope  query  string  true  "DEPT o DEPT:section"
// @Success      200  {array}  dto.ExtraAllocationResponse
// @Router       /api/extras/allocations [get]
func (h *ExtrasHandler) ListAllocations(c *fiber.Ctx) error {
	scope, err := h.resolver.Resolve(c.UserContext(), c.Query("scope"))
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListAllocations(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ExtraAllocationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAllocationResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Transfer godoc
// @Summary      Trasladar un extra
// @Tags         extras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferExtraRequest  true  "origen, destino, extra, cantidad"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/extras/transfers [post]
func (h *ExtrasHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferExtraRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	from, err := h.resolver.Resolve(c.UserContext(), in.From)
	if err != nil {
		return writeError(c, err)
	}
	to, err := h.resolver.Resolve(c.UserContext(), in.To)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Transfer(c.UserContext(), from, to, in.ExtraID, in.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "extra trasladado"})
}
