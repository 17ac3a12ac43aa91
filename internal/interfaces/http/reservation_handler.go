package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
)

// ReservationHandler retenciones de stock por orden (protegido).
type ReservationHandler struct {
	uc       *inventory.ReservationUseCase
	resolver ScopeResolver
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *inventory.ReservationUseCase, resolver ScopeResolver) *ReservationHandler {
	return &ReservationHandler{uc: uc, resolver: resolver}
}

// Reserve godoc
// @Summary      Reservar stock
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReserveRequest  true  "orden, ítem, scope, cantidad"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	scope, err := h.resolver.Resolve(c.UserContext(), in.Scope)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.uc.Reserve(c.UserContext(), inventory.ReserveInput{
		OrderID:  in.OrderID,
		LineID:   in.LineID,
		ItemID:   in.ItemID,
		Scope:    scope,
		Quantity: in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(r))
}

// Consume godoc
// @Summary      Consumir reserva
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ConsumeReservationRequest  true  "orden, ítem, cantidad opcional"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reservations/consume [post]
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	consumed, err := h.uc.Consume(c.UserContext(), in.OrderID, in.ItemID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"consumed": consumed})
}

// Release godoc
// @Summary      Liberar reservas
// @Description  Sin item_id libera todas las reservas abiertas de la orden.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReleaseReservationRequest  true  "orden, ítem opcional"
// @Success      200   {object}  map[string]string
// @Router       /api/reservations/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.Release(c.UserContext(), in.OrderID, in.ItemID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reservas liberadas"})
}

// ListByOrder godoc
// @Summary      Reservas de una orden
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        order_id  query  string  true  "ID de la orden"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListByOrder(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.Query("order_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}
