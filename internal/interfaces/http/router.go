package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/application/extras"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
	"github.com/jhoicas/hospitality-ops/internal/application/transfer"
	"github.com/jhoicas/hospitality-ops/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders       *order.UseCase
	Transfers    *transfer.UseCase
	Ledger       *inventory.LedgerUseCase
	Reservations *inventory.ReservationUseCase
	Extras       *extras.UseCase
	Directory    *directory.UseCase
	Stats        *stats.UseCase
	JWTSecret    string
}

// Roles con permiso de mutación. El despacho también lo puede hacer el personal de piso.
var (
	writeRoles   = []string{jwt.RoleAdmin, jwt.RoleManager, jwt.RoleStorekeeper}
	fulfillRoles = []string{jwt.RoleAdmin, jwt.RoleManager, jwt.RoleStorekeeper, jwt.RoleStaff}
)

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	canWrite := RequireRole(writeRoles...)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", canWrite, orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/lines", canWrite, orderHandler.AddLine)
	orders.Patch("/:id/lines/:lineId", canWrite, orderHandler.UpdateLineQuantity)
	orders.Delete("/:id/lines/:lineId", canWrite, orderHandler.RemoveLine)
	orders.Put("/:id/lines/:lineId/fulfillment", RequireRole(fulfillRoles...), orderHandler.FulfillLine)
	orders.Post("/:id/discount", canWrite, orderHandler.ApplyDiscount)
	orders.Post("/:id/cancel", canWrite, orderHandler.Cancel)
	orders.Post("/:id/refund", canWrite, orderHandler.Refund)
	orders.Post("/:id/complete", canWrite, orderHandler.Complete)

	// Transfers
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Post("/", canWrite, transferHandler.Create)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", canWrite, transferHandler.Approve)
	transfers.Post("/:id/resume", RequireRole(jwt.RoleAdmin, jwt.RoleManager), transferHandler.Resume)

	// Inventory
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Directory)
	inv.Get("/availability", inventoryHandler.CheckAvailability)
	inv.Get("/stock", inventoryHandler.ListStock)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Post("/restock", canWrite, inventoryHandler.Restock)
	inv.Post("/adjust", canWrite, inventoryHandler.Adjust)

	// Reservations
	res := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Directory)
	res.Get("/", reservationHandler.ListByOrder)
	res.Post("/", canWrite, reservationHandler.Reserve)
	res.Post("/consume", canWrite, reservationHandler.Consume)
	res.Post("/release", canWrite, reservationHandler.Release)

	// Extras
	ext := protected.Group("/extras")
	extrasHandler := NewExtrasHandler(deps.Extras, deps.Directory)
	ext.Post("/", canWrite, extrasHandler.Create)
	ext.Get("/allocations", extrasHandler.ListAllocations)
	ext.Post("/allocations", canWrite, extrasHandler.Allocate)
	ext.Post("/transfers", canWrite, extrasHandler.Transfer)

	// Departments
	departments := protected.Group("/departments")
	departmentHandler := NewDepartmentHandler(deps.Directory, deps.Stats)
	departments.Get("/", departmentHandler.List)
	departments.Get("/resolve", departmentHandler.Resolve)
	departments.Get("/:id/stats", departmentHandler.Stats)
	departments.Post("/", canWrite, departmentHandler.Create)
	departments.Post("/:id/sections", canWrite, departmentHandler.CreateSection)
}
