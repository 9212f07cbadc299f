package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Mutation       *inventory.StockMutationUseCase
	Query          *inventory.StockQueryUseCase
	Report         *inventory.MovementReportUseCase
	Idempotency    IdempotencyStore // nil = sin deduplicación
	IdempotencyTTL time.Duration
	Validator      *validator.Validate // nil = NewValidator()
	JWTSecret      string
	Logger         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := deps.Validator
	if validate == nil {
		validate = NewValidator()
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	invGroup := api.Group("/inventory", AuthMiddleware(deps.JWTSecret))
	h := NewInventoryHandler(deps.Mutation, deps.Query, deps.Report, validate, deps.Logger)
	idem := Idempotency(deps.Idempotency, ttl, deps.Logger)

	readers := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	stockers := RequireRole(RoleAdmin, RoleBodeguero)
	sellers := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)

	// Registros de stock
	invGroup.Post("/stock", stockers, idem, h.CreateStock)
	invGroup.Get("/stock/:product_id/:branch_id", readers, h.GetStock)
	invGroup.Patch("/stock/:product_id/:branch_id/thresholds", stockers, h.UpdateThresholds)
	invGroup.Delete("/stock/:product_id/:branch_id", stockers, h.DeleteStock)

	// Mutaciones con asiento en el kardex
	invGroup.Post("/adjust", stockers, idem, h.Adjust)
	invGroup.Post("/transfer", stockers, idem, h.Transfer)

	// Reservas de pedidos
	invGroup.Post("/reserve", sellers, idem, h.Reserve)
	invGroup.Post("/release", sellers, idem, h.Release)
	invGroup.Post("/commit-sale", sellers, idem, h.CommitSale)

	// Consultas
	invGroup.Get("/low-stock", readers, h.LowStock)
	invGroup.Get("/stats", readers, h.Stats)
	invGroup.Get("/movements/:product_id", readers, h.Movements)
	invGroup.Get("/movements/:product_id/pdf", readers, h.MovementsPDF)
	invGroup.Get("/ledger", readers, h.Ledger)
}
