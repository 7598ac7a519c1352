package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Movimientos que muestra el reporte de últimos movimientos.
const defaultRecentMovements = 50

// StockReport reporte de estado de stock por producto.
type StockReport struct {
	TenantID    string
	GeneratedAt time.Time
	Items       []ProductStockStatus
	Products    int
	Low         int
	Critical    int
}

// StockReportExporter genera un archivo con el reporte de stock (PDF, XLSX...).
type StockReportExporter interface {
	Export(ctx context.Context, report *StockReport) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportUseCase reportes de inventario. Los niveles de stock vienen de la fachada de consultas.
type ReportUseCase struct {
	query      *StockQueryUseCase
	reportRepo repository.ReportRepository
	exporters  map[string]StockReportExporter
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso. exporters se indexa por formato (pdf, xlsx).
func NewReportUseCase(query *StockQueryUseCase, reportRepo repository.ReportRepository, exporters map[string]StockReportExporter) *ReportUseCase {
	if exporters == nil {
		exporters = map[string]StockReportExporter{}
	}
	return &ReportUseCase{query: query, reportRepo: reportRepo, exporters: exporters, now: time.Now}
}

// StockReport estado (normal/low/critical) de cada producto activo.
func (uc *ReportUseCase) StockReport(ctx context.Context, tenantID string) (*StockReport, error) {
	items, err := uc.query.StockStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	r := &StockReport{TenantID: tenantID, GeneratedAt: uc.now(), Items: items, Products: len(items)}
	for _, it := range items {
		switch it.Level {
		case inventory.StockLevelLow:
			r.Low++
		case inventory.StockLevelCritical:
			r.Critical++
		}
	}
	return r, nil
}

// RecentMovements últimos movimientos con nombres de producto y bodega.
func (uc *ReportUseCase) RecentMovements(ctx context.Context, tenantID string, limit int) ([]repository.MovementRow, error) {
	if tenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 || limit > 500 {
		limit = defaultRecentMovements
	}
	return uc.reportRepo.RecentMovements(ctx, tenantID, limit)
}

// LowStock productos bajo el mínimo con su faltante.
func (uc *ReportUseCase) LowStock(ctx context.Context, tenantID string) ([]ProductStockStatus, error) {
	return uc.query.LowStockProducts(ctx, tenantID)
}

// ExportStock genera el reporte de stock en el formato pedido.
// Devuelve el contenido, su content-type y un nombre de archivo sugerido.
func (uc *ReportUseCase) ExportStock(ctx context.Context, tenantID, format string) ([]byte, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	exp, ok := uc.exporters[format]
	if !ok {
		return nil, "", "", domain.Invalid("formato de exportación %q no soportado", format)
	}
	report, err := uc.StockReport(ctx, tenantID)
	if err != nil {
		return nil, "", "", err
	}
	data, err := exp.Export(ctx, report)
	if err != nil {
		return nil, "", "", fmt.Errorf("exportar reporte %s: %w", format, err)
	}
	filename := fmt.Sprintf("stock_%s.%s", report.GeneratedAt.Format("20060102_1504"), exp.Extension())
	return data, exp.ContentType(), filename, nil
}
