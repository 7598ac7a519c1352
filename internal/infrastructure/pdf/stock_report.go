// Package pdf genera la versión imprimible del reporte de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + tenant       │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / en mínimo / críticos                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Categoría | Mínimo | Stock | Nivel  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: criterio de niveles                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/pkg/numfmt"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorLow      = &props.Color{Red: 204, Green: 122, Blue: 0}
	colorCritical = &props.Color{Red: 180, Green: 20, Blue: 20}
)

var _ appinventory.StockReportExporter = (*StockReportExporter)(nil)

// ── Exporter ──────────────────────────────────────────────────────────────────

// StockReportExporter implementa inventory.StockReportExporter usando Maroto v2.
type StockReportExporter struct {
	nf *numfmt.Formatter
}

// NewStockReportExporter construye el exportador con el locale de los reportes (ej. es-CO).
func NewStockReportExporter(locale string) *StockReportExporter {
	return &StockReportExporter{nf: numfmt.New(locale)}
}

func (e *StockReportExporter) ContentType() string { return "application/pdf" }
func (e *StockReportExporter) Extension() string   { return "pdf" }

// Export genera el PDF y devuelve sus bytes.
func (e *StockReportExporter) Export(ctx context.Context, report *appinventory.StockReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de stock", true).
		WithAuthor(report.TenantID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(e.summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin productos activos.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range e.tableDetailRows(report.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *appinventory.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("REPORTE DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tenant: "+nonEmpty(report.TenantID, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func (e *StockReportExporter) summaryRow(report *appinventory.StockReport) core.Row {
	cell := func(label string, n int, c *props.Color) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Center}),
			text.New(e.nf.Integer(n), props.Text{Style: fontstyle.Bold, Size: 12, Top: 6, Align: align.Center, Color: c}),
		)
	}
	return row.New(15).Add(
		cell("PRODUCTOS", report.Products, nil),
		cell("EN MÍNIMO", report.Low, colorLow),
		cell("CRÍTICOS", report.Critical, colorCritical),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Categoría", 2, align.Left),
		h("Mínimo", 1, align.Right),
		h("Stock", 2, align.Right),
		h("Nivel", 1, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows una fila por producto.
func (e *StockReportExporter) tableDetailRows(items []appinventory.ProductStockStatus) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(it.SKU, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(it.CategoryName, "-"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(e.nf.Quantity(it.MinStockLevel), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(e.nf.Quantity(it.TotalStock)+" "+it.Unit, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(levelLabel(it.Level), props.Text{
				Size: 7, Style: fontstyle.Bold, Align: align.Center, Top: 1, Color: levelColor(it.Level),
			})),
		))
	}
	return result
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Nivel MÍNIMO: stock total menor o igual al mínimo del producto. "+
				"Nivel CRÍTICO: stock total menor o igual a la mitad del mínimo.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func levelLabel(l inventory.StockLevel) string {
	switch l {
	case inventory.StockLevelCritical:
		return "CRÍTICO"
	case inventory.StockLevelLow:
		return "MÍNIMO"
	default:
		return "OK"
	}
}

func levelColor(l inventory.StockLevel) *props.Color {
	switch l {
	case inventory.StockLevelCritical:
		return colorCritical
	case inventory.StockLevelLow:
		return colorLow
	default:
		return colorGray
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
