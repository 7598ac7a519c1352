package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// IdempotencyKeyHeader alternativa al campo idempotency_key del body.
const IdempotencyKeyHeader = "Idempotency-Key"

// InventoryHandler maneja movimientos, saldos y auditoría del stock (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedgerUseCase
	query  *inventory.StockQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedgerUseCase, query *inventory.StockQueryUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, query: query}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Aplica un movimiento in/out/adjustment al ledger y al saldo en una sola transacción.
// @Description  Reintentar con la misma clave de idempotencia devuelve el resultado original (200, replayed=true).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave de idempotencia (si no viene en el body)"
// @Param        body             body    dto.RecordMovementRequest  true   "product_id, warehouse_id, movement_type, quantity, idempotency_key"
// @Success      201   {object}  dto.MovementResultResponse
// @Success      200   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Kind: domain.KindValidation, Message: "cuerpo inválido"})
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = strings.TrimSpace(c.Get(IdempotencyKeyHeader))
	}
	in.MovementType = strings.ToLower(strings.TrimSpace(in.MovementType))
	if ok, err := validateBody(c, &in); !ok {
		return err
	}

	res, err := h.ledger.RecordMovementFromRequest(c.Context(), tenantID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(inventory.ToMovementResponse(res))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        warehouse_id   query  string  false  "Bodega"
// @Param        movement_type  query  string  false  "in | out | adjustment"
// @Param        from           query  string  false  "RFC3339, inclusivo"
// @Param        to             query  string  false  "RFC3339, exclusivo"
// @Param        limit          query  int     false  "Límite"  default(50)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	limit, offset := page(c, 50, 500)
	filter := repository.MovementFilter{
		TenantID:    tenantID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        entity.MovementType(strings.ToLower(c.Query("movement_type"))),
		Limit:       limit,
		Offset:      offset,
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return respondError(c, err)
	}

	movs, err := h.ledger.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, inventory.ToMovementDTO(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// GetBalance godoc
// @Summary      Saldo de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balance [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	st, err := h.query.GetBalance(c.Context(), entity.StockKey{
		TenantID:    tenantID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToBalanceDTO(st))
}

// GetTotalStock godoc
// @Summary      Stock total de un producto
// @Description  Suma de todas las bodegas, con nivel normal/low/critical frente al mínimo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Success      200  {object}  dto.TotalStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/total-stock [get]
func (h *InventoryHandler) GetTotalStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	productID := c.Query("product_id")
	if productID == "" {
		return respondError(c, domain.Invalid("product_id es obligatorio"))
	}
	summary, err := h.query.ProductSummary(c.Context(), tenantID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToStockSummaryResponse(summary))
}

// GetBreakdown godoc
// @Summary      Desglose del stock por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Success      200  {object}  dto.BreakdownResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/breakdown [get]
func (h *InventoryHandler) GetBreakdown(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	productID := c.Query("product_id")
	if productID == "" {
		return respondError(c, domain.Invalid("product_id es obligatorio"))
	}
	summary, err := h.query.ProductSummary(c.Context(), tenantID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BreakdownResponse{ProductID: productID, Warehouses: inventory.ToBreakdownDTO(summary.Warehouses)})
}

// Recompute godoc
// @Summary      Recalcular un saldo desde el ledger
// @Description  Reconstruye el saldo aplicando todos sus movimientos en orden. Con dry_run=true solo audita.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "Producto"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        dry_run       query  bool    false  "Solo auditar"
// @Success      200  {object}  dto.RecomputeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/recompute [post]
func (h *InventoryHandler) Recompute(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	res, err := h.ledger.RecomputeBalance(c.Context(), inventory.RecomputeInput{
		TenantID:    tenantID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		DryRun:      c.QueryBool("dry_run", false),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToRecomputeResponse(res))
}

// Reconcile godoc
// @Summary      Auditar todos los saldos del tenant
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        dry_run  query  bool  false  "Solo auditar"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	report, err := h.ledger.ReconcileTenant(c.Context(), tenantID, c.QueryBool("dry_run", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToReconcileResponse(report))
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid("%s debe ser RFC3339", key)
	}
	return &t, nil
}
