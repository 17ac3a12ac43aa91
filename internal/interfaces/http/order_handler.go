package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// OrderHandler toma de pedidos y despacho por línea (protegido).
type OrderHandler struct {
	uc *order.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden
// @Description  Valida líneas, calcula totales y reserva stock de las líneas con inventario.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "Líneas con scope DEPT o DEPT:section"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]order.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, toLineInput(l))
	}
	v, err := h.uc.Create(c.UserContext(), order.CreateInput{
		CustomerRef:   in.CustomerRef,
		Lines:         lines,
		DiscountTotal: in.DiscountTotal,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(v))
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// AddLine godoc
// @Summary      Agregar línea
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "ID de la orden"
// @Param        body  body      dto.OrderLineRequest  true  "Línea"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.OrderLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := h.uc.AddLine(c.UserContext(), c.Params("id"), toLineInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// UpdateLineQuantity godoc
// @Summary      Cambiar cantidad de una línea pendiente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path      string                         true  "ID de la orden"
// @Param        lineId  path      string                         true  "ID de la línea"
// @Param        body    body      dto.UpdateLineQuantityRequest  true  "Nueva cantidad"
// @Success      200     {object}  dto.OrderResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId} [patch]
func (h *OrderHandler) UpdateLineQuantity(c *fiber.Ctx) error {
	var in dto.UpdateLineQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := h.uc.UpdateLineQuantity(c.UserContext(), c.Params("id"), c.Params("lineId"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// RemoveLine godoc
// @Summary      Eliminar línea pendiente
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true  "ID de la orden"
// @Param        lineId  path      string  true  "ID de la línea"
// @Success      200     {object}  dto.OrderResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId} [delete]
func (h *OrderHandler) RemoveLine(c *fiber.Ctx) error {
	v, err := h.uc.RemoveLine(c.UserContext(), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// FulfillLine godoc
// @Summary      Despachar línea
// @Description  Avanza el estado de la línea; al despachar descuenta stock del punto de consumo
//
//	y registra el movimiento en la misma transacción. processing con todo lo pendiente es 409.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path      string                  true  "ID de la orden"
// @Param        lineId  path      string                  true  "ID de la línea"
// @Param        body    body      dto.FulfillLineRequest  true  "status processing|fulfilled, quantity opcional"
// @Success      200     {object}  dto.OrderResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Failure      503     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId}/fulfillment [put]
func (h *OrderHandler) FulfillLine(c *fiber.Ctx) error {
	var in dto.FulfillLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := h.uc.FulfillLine(c.UserContext(), order.FulfillInput{
		OrderID:  c.Params("id"),
		LineID:   c.Params("lineId"),
		Status:   entity.LineStatus(in.Status),
		Quantity: in.Quantity,
		Notes:    in.Notes,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// ApplyDiscount godoc
// @Summary      Aplicar descuento
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la orden"
// @Param        body  body      dto.ApplyDiscountRequest  true  "Descuento total en unidades menores"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/discount [post]
func (h *OrderHandler) ApplyDiscount(c *fiber.Ctx) error {
	var in dto.ApplyDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := h.uc.ApplyDiscount(c.UserContext(), c.Params("id"), in.DiscountTotal)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

// Cancel godoc
// @Summary      Cancelar orden (libera reservas)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.respond(c, h.uc.Cancel)
}

// Refund godoc
// @Summary      Reembolsar orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *fiber.Ctx) error {
	return h.respond(c, h.uc.Refund)
}

// Complete godoc
// @Summary      Completar orden despachada
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	return h.respond(c, h.uc.Complete)
}

func (h *OrderHandler) respond(c *fiber.Ctx, op func(ctx context.Context, orderID string) (*order.View, error)) error {
	v, err := op(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(v))
}

func toLineInput(l dto.OrderLineRequest) order.LineInput {
	return order.LineInput{
		ProductID:   l.ProductID,
		ProductType: entity.ProductType(l.ProductType),
		ProductName: l.ProductName,
		ScopeCode:   l.Scope,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
	}
}
