// Package excel exporta el reporte de stock como hoja de cálculo.
package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

const sheetName = "Stock"

var headings = []string{"SKU", "Producto", "Categoría", "Unidad", "Mínimo", "Stock total", "Faltante", "Nivel"}

var _ appinventory.StockReportExporter = (*StockReportExporter)(nil)

// StockReportExporter implementa inventory.StockReportExporter con excelize.
// Las cantidades se escriben como números para que la hoja pueda sumarlas.
type StockReportExporter struct{}

// NewStockReportExporter construye el exportador.
func NewStockReportExporter() *StockReportExporter { return &StockReportExporter{} }

func (e *StockReportExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (e *StockReportExporter) Extension() string { return "xlsx" }

// Export genera el libro y devuelve sus bytes.
func (e *StockReportExporter) Export(ctx context.Context, report *appinventory.StockReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("excel: hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("excel: encabezado: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	for i, it := range report.Items {
		r := i + 2
		minLevel, _ := it.MinStockLevel.Float64()
		total, _ := it.TotalStock.Float64()
		shortage, _ := it.Shortage.Float64()
		values := []any{it.SKU, it.ProductName, it.CategoryName, it.Unit, minLevel, total, shortage, string(it.Level)}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", r, err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 36); err != nil {
		return nil, fmt.Errorf("excel: ancho: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
