package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/transfer"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// TransferHandler traslados entre departamentos y secciones (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Solicitar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransferRequest  true  "from DEPT, to DEPT o DEPT:section, ítems"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]transfer.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transfer.ItemInput{
			ProductType: entity.ProductType(it.ProductType),
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
		})
	}
	t, err := h.uc.Create(c.UserContext(), transfer.CreateInput{
		FromCode: in.From,
		ToCode:   in.To,
		Items:    items,
		Notes:    in.Notes,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Approve godoc
// @Summary      Aprobar y ejecutar traslado
// @Description  Mueve inventario y bebidas en una sola transacción (con reintentos ante contención)
//
//	y luego los extras uno a uno. Un faltante responde 409 con success=false.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.ApproveTransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ApproveTransferResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	res, err := h.uc.Approve(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ApproveTransferResponse{Success: false, Message: err.Error()})
		}
		return writeError(c, err)
	}
	return c.JSON(toApproveResponse(res))
}

// Resume godoc
// @Summary      Reanudar traslado aprobado
// @Description  Termina la fase de extras de un traslado approved cuyo aprobador no la completó.
//
//	Solo toma aprobaciones más antiguas que la ventana configurada.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.ApproveTransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/resume [post]
func (h *TransferHandler) Resume(c *fiber.Ctx) error {
	res, err := h.uc.Resume(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toApproveResponse(res))
}
