package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// ReportHandler reportes de inventario (protegido).
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Stock godoc
// @Summary      Reporte de stock
// @Description  Estado normal/low/critical de cada producto activo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockReportResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	r, err := h.uc.StockReport(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockReportResponse{
		GeneratedAt: r.GeneratedAt,
		Products:    r.Products,
		Low:         r.Low,
		Critical:    r.Critical,
		Items:       inventory.ToStockStatusDTO(r.Items),
	})
}

// Movements godoc
// @Summary      Últimos movimientos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Cantidad"  default(50)
// @Success      200  {object}  dto.MovementReportResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	rows, err := h.uc.RecentMovements(c.Context(), tenantID, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementReportItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.MovementReportItem{
			MovementResponse: inventory.ToMovementDTO(r.Movement),
			ProductName:      r.ProductName,
			WarehouseName:    r.WarehouseName,
		})
	}
	return c.JSON(dto.MovementReportResponse{Items: items})
}

// LowStock godoc
// @Summary      Productos en mínimo o críticos
// @Description  Ordenados por faltante (mínimo - stock) de mayor a menor.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockReportResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	items, err := h.uc.LowStock(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Shortage)
	}
	return c.JSON(dto.LowStockReportResponse{Items: inventory.ToStockStatusDTO(items), TotalShortage: total})
}

// ExportStock godoc
// @Summary      Descargar reporte de stock
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "pdf | xlsx"  default(pdf)
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock/export [get]
func (h *ReportHandler) ExportStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	body, contentType, filename, err := h.uc.ExportStock(c.Context(), tenantID, c.Query("format", "pdf"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}
