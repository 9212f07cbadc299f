package http

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de registros de stock y kardex (protegido).
type InventoryHandler struct {
	mutation *inventory.StockMutationUseCase
	query    *inventory.StockQueryUseCase
	report   *inventory.MovementReportUseCase
	validate *validator.Validate
	log      zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	mutation *inventory.StockMutationUseCase,
	query *inventory.StockQueryUseCase,
	report *inventory.MovementReportUseCase,
	validate *validator.Validate,
	log zerolog.Logger,
) *InventoryHandler {
	return &InventoryHandler{mutation: mutation, query: query, report: report, validate: validate, log: log}
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	return writeError(c, h.log, err)
}

func (h *InventoryHandler) actor(c *fiber.Ctx) (string, bool) {
	userID := GetUserID(c)
	return userID, userID != ""
}

// requireBranch rechaza con ErrForbidden si el token no puede operar sobre la sucursal.
func requireBranch(c *fiber.Ctx, branchID string) error {
	if !CanActOnBranch(c, branchID) {
		return fmt.Errorf("%w: sucursal %s fuera del alcance del usuario", domain.ErrForbidden, branchID)
	}
	return nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func stockKeyFromParams(c *fiber.Ctx) entity.StockKey {
	return entity.StockKey{ProductID: c.Params("product_id"), BranchID: c.Params("branch_id")}
}

// CreateStock godoc
// @Summary      Crear registro de stock
// @Description  Crea el registro de un producto en una sucursal. El stock inicial no genera asiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "product_id, branch_id, stock inicial, umbrales, unit_cost"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [post]
func (h *InventoryHandler) CreateStock(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	rec, err := h.mutation.CreateStockRecord(c.Context(), inventory.CreateInputFromRequest(in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToStockRecordResponse(rec))
}

// GetStock godoc
// @Summary      Consultar registro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto"
// @Param        branch_id   path  string  true  "Sucursal"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{product_id}/{branch_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	rec, err := h.query.GetStockRecord(c.Context(), stockKeyFromParams(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(inventory.ToStockRecordResponse(rec))
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales
// @Description  Cambia mínimo, máximo y punto/cantidad de reorden; recalcula los indicadores. No genera asiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                       true  "Producto"
// @Param        branch_id   path  string                       true  "Sucursal"
// @Param        body        body  dto.UpdateThresholdsRequest  true  "Umbrales"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{product_id}/{branch_id}/thresholds [patch]
func (h *InventoryHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.UpdateThresholdsRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	key := stockKeyFromParams(c)
	rec, err := h.mutation.UpdateThresholds(c.Context(), inventory.UpdateThresholdsInput{
		ProductID:  key.ProductID,
		BranchID:   key.BranchID,
		Thresholds: inventory.ThresholdsFromRequest(in),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(inventory.ToStockRecordResponse(rec))
}

// DeleteStock godoc
// @Summary      Borrar registro de stock (lógico)
// @Description  Falla con 409 si el registro tiene unidades reservadas.
// @Tags         inventory
// @Security     Bearer
// @Param        product_id  path  string  true  "Producto"
// @Param        branch_id   path  string  true  "Sucursal"
// @Success      204  "registro borrado"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{product_id}/{branch_id} [delete]
func (h *InventoryHandler) DeleteStock(c *fiber.Ctx) error {
	if err := h.mutation.DeleteStockRecord(c.Context(), stockKeyFromParams(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Adjust godoc
// @Summary      Registrar compra, venta, devolución o ajuste
// @Description  En type=adjustment quantity es el valor absoluto resultante (conteo físico).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de deduplicación"
// @Param        body             body    dto.AdjustStockRequest  true   "product_id, branch_id, type, quantity, unit_cost"
// @Success      201  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID, ok := h.actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	if in.Type == "" {
		return h.fail(c, fmt.Errorf("%w: type es requerido", domain.ErrInvalidInput))
	}
	res, err := h.mutation.AdjustStock(c.Context(), inventory.AdjustInputFromRequest(userID, in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustStockResponse{
		Record: inventory.ToStockRecordResponse(res.Record),
		Entry:  inventory.ToLedgerEntryResponse(res.Entry),
	})
}

// Transfer godoc
// @Summary      Trasladar stock entre sucursales
// @Description  Si el destino no existe se crea con los umbrales y la moneda del origen.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "Clave de deduplicación"
// @Param        body             body    dto.TransferStockRequest  true   "product_id, from_branch_id, to_branch_id, quantity"
// @Success      201  {object}  dto.TransferStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	userID, ok := h.actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferStockRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	res, err := h.mutation.TransferStock(c.Context(), inventory.TransferInputFromRequest(userID, in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferStockResponse{
		Source:             inventory.ToStockRecordResponse(res.Source),
		Destination:        inventory.ToStockRecordResponse(res.Destination),
		DestinationCreated: res.Created,
		Entry:              inventory.ToLedgerEntryResponse(res.Entry),
	})
}

// Reserve godoc
// @Summary      Apartar stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de deduplicación"
// @Param        body             body    dto.ReservationRequest  true   "product_id, branch_id, quantity"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.mutation.ReserveStock)
}

// Release godoc
// @Summary      Liberar stock apartado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de deduplicación"
// @Param        body             body    dto.ReservationRequest  true   "product_id, branch_id, quantity"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.mutation.ReleaseReservedStock)
}

func (h *InventoryHandler) reservation(c *fiber.Ctx, op func(ctx context.Context, in inventory.ReservationInput) (*entity.StockRecord, error)) error {
	userID, ok := h.actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	if err := requireBranch(c, in.BranchID); err != nil {
		return h.fail(c, err)
	}
	rec, err := op(c.Context(), inventory.ReservationInputFromRequest(userID, in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(inventory.ToStockRecordResponse(rec))
}

// CommitSale godoc
// @Summary      Confirmar venta apartada
// @Description  Libera la reserva y descuenta el stock en una sola operación; escribe un asiento de venta.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de deduplicación"
// @Param        body             body    dto.AdjustStockRequest  true   "product_id, branch_id, quantity, order_id"
// @Success      201  {object}  dto.AdjustStockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/commit-sale [post]
func (h *InventoryHandler) CommitSale(c *fiber.Ctx) error {
	userID, ok := h.actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := bindBody(c, h.validate, &in); err != nil {
		return h.fail(c, err)
	}
	if err := requireBranch(c, in.BranchID); err != nil {
		return h.fail(c, err)
	}
	res, err := h.mutation.CommitReservedSale(c.Context(), inventory.AdjustInputFromRequest(userID, in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustStockResponse{
		Record: inventory.ToStockRecordResponse(res.Record),
		Entry:  inventory.ToLedgerEntryResponse(res.Entry),
	})
}

// LowStock godoc
// @Summary      Registros en stock bajo
// @Description  Ordenados de menor a mayor stock, con la cantidad sugerida de reposición.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal. Vacío = todas."
// @Param        limit      query  int     false  "Máximo de registros"
// @Success      200  {array}   dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.query.LowStockItems(c.Context(), c.Query("branch_id"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemDTO{
			StockRecordResponse: inventory.ToStockRecordResponse(it.Record),
			SuggestedOrderQty:   it.SuggestedOrderQty,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Stats godoc
// @Summary      Agregados de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal. Vacío = todas."
// @Success      200  {object}  dto.StockStatsResponse
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	st, err := h.query.Stats(c.Context(), branchID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.StockStatsResponse{
		BranchID:        branchID,
		TotalRecords:    st.TotalRecords,
		LowStockCount:   st.LowStockCount,
		OutOfStockCount: st.OutOfStockCount,
		TotalValue:      st.TotalValue,
	})
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        branch_id   query  string  false  "Sucursal (origen o destino)"
// @Param        days        query  int     false  "Ventana en días (default 30)"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{product_id} [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	entries, err := h.query.MovementHistory(c.Context(), c.Params("product_id"), c.Query("branch_id"), c.QueryInt("days", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "items": inventory.ToLedgerEntryResponses(entries)})
}

// MovementsPDF godoc
// @Summary      Kardex en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id  path   string  true   "Producto"
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        days        query  int     false  "Ventana en días (default 30)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{product_id}/pdf [get]
func (h *InventoryHandler) MovementsPDF(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	doc, err := h.report.GeneratePDF(c.Context(), productID, c.Query("branch_id"), c.QueryInt("days", 0))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s.pdf"`, productID))
	return c.Send(doc)
}

// Ledger godoc
// @Summary      Consultar kardex
// @Description  Paginado, del más reciente al más antiguo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        branch_id   query  string  false  "Sucursal (origen o destino)"
// @Param        type        query  string  false  "purchase | sale | transfer | adjustment | return"
// @Param        reference   query  string  false  "Referencia externa"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Param        limit       query  int     false  "Tamaño de página (max 100)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LedgerPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	filter := entity.LedgerFilter{
		ProductID: c.Query("product_id"),
		BranchID:  c.Query("branch_id"),
		Type:      entity.LedgerType(c.Query("type")),
		Reference: c.Query("reference"),
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("offset", 0),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return h.fail(c, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return h.fail(c, err)
	}
	page, err := h.query.QueryLedger(c.Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.LedgerPageResponse{
		Items: inventory.ToLedgerEntryResponses(page.Entries),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser RFC3339", domain.ErrInvalidInput, name)
	}
	return &t, nil
}
