package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// ScopeResolver traduce "DEPT" o "DEPT:section" a un Scope (directory.UseCase).
type ScopeResolver interface {
	Resolve(ctx context.Context, code string) (entity.Scope, error)
}

// InventoryHandler libro de stock: disponibilidad, entradas, ajustes y kardex (protegido).
type InventoryHandler struct {
	ledger   *inventory.LedgerUseCase
	resolver ScopeResolver
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, resolver ScopeResolver) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, resolver: resolver}
}

// CheckAvailability godoc
// @Summary      Consultar disponibilidad
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        scope      query     string  true  "DEPT o DEPT:section"
// @Param        item_id    query     string  true  "ID del ítem"
// @Param        item_type  query     string  true  "inventory|drink|service|room|game"
// @Param        quantity   query     string  true  "Cantidad solicitada"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) CheckAvailability(c *fiber.Ctx) error {
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return badQuery(c, "quantity")
	}
	scope, err := h.resolver.Resolve(c.UserContext(), c.Query("scope"))
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.ledger.CheckAvailability(c.UserContext(), entity.ProductType(c.Query("item_type")), c.Query("item_id"), scope, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{HasStock: a.HasStock, Available: a.Available, Message: a.Message})
}

// ListStock godoc
// @Summary      Stock de un scope
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        scope  query  string  true  "DEPT o DEPT:section"
// @Success      200  {array}   dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	scope, err := h.resolver.Resolve(c.UserContext(), c.Query("scope"))
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.ledger.ListStock(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": toStockResponse(list)})
}

// Restock godoc
// @Summary      Entrada de mercancía
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "scope, ítem, cantidad"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	scope, err := h.resolver.Resolve(c.UserContext(), in.Scope)
	if err != nil {
		return writeError(c, err)
	}
	err = h.ledger.Restock(c.UserContext(), inventory.RestockInput{
		Scope:     scope,
		ItemID:    in.ItemID,
		ItemType:  entity.ProductType(in.ItemType),
		Quantity:  in.Quantity,
		Reference: in.Reference,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "entrada registrada"})
}

// Adjust godoc
// @Summary      Ajuste de inventario
// @Description  Delta positivo suma; negativo descuenta solo si hay disponible.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "scope, ítem, delta"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	scope, err := h.resolver.Resolve(c.UserContext(), in.Scope)
	if err != nil {
		return writeError(c, err)
	}
	err = h.ledger.Adjust(c.UserContext(), inventory.AdjustInput{
		Scope:     scope,
		ItemID:    in.ItemID,
		ItemType:  entity.ProductType(in.ItemType),
		Delta:     in.Delta,
		Reference: in.Reference,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ajuste aplicado"})
}

// ListMovements godoc
// @Summary      Kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference  query  string  false  "ID de orden o traslado"
// @Param        item_id    query  string  false  "ID del ítem"
// @Param        limit      query  int     false  "Límite (por ítem)"
// @Param        offset     query  int     false  "Desplazamiento (por ítem)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	list, err := h.ledger.ListMovements(c.UserContext(), c.Query("reference"), c.Query("item_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{Items: toMovementResponse(list), Page: page.Page(len(list))})
}

func badQuery(c *fiber.Ctx, param string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetro inválido: " + param})
}
