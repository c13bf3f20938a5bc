// Package pdf genera los reportes exportables en PDF.
//
// Layout del resumen financiero (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período          │  Fecha de generación    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Ingresos / Costo / Utilidad / Márgenes / ROI       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  GASTOS: Rubro | Monto | Participación | Tendencia           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTA: cifras estimadas por política                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLoss    = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ reports.FinancialPDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa reports.FinancialPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	company string
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador; company aparece como autor del documento.
func NewMarotoReportGenerator(company string) *MarotoReportGenerator {
	return &MarotoReportGenerator{
		company: company,
		printer: message.NewPrinter(language.Spanish),
	}
}

// FinancialSummaryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) FinancialSummaryPDF(_ context.Context, doc reports.FinancialSummaryDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sectionTitle("RESUMEN DEL PERÍODO"))
	m.AddRows(g.summaryRows(doc.Summary)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("DESGLOSE DE GASTOS (ESTIMADO)"))
	m.AddRows(expenseHeaderRow())
	m.AddRows(g.expenseRows(doc.Expenses)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(estimateNoteRow(doc.Summary.EstimatedFields))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReportGenerator) headerRow(doc reports.FinancialSummaryDocument) core.Row {
	period := fmt.Sprintf("Del %s al %s",
		doc.Range.Start.Format("02/01/2006"), doc.Range.End.Format("02/01/2006"))

	return row.New(18).Add(
		col.New(8).Add(
			text.New(strings.ToUpper(doc.Title), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(period, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(g.company, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoReportGenerator) summaryRows(s report.FinancialSummaryResult) []core.Row {
	lines := []struct {
		label string
		value string
		bold  bool
		loss  bool
	}{
		{"Ventas completadas", g.printer.Sprintf("%d", s.SalesCount), false, false},
		{"Ingresos totales", g.money(s.TotalRevenue), true, false},
		{"Costo de ventas", g.money(s.TotalCost), false, false},
		{"Utilidad bruta", g.money(s.GrossProfit), true, s.GrossProfit.IsNegative()},
		{"Margen bruto", g.percent(s.GrossMarginPct), false, false},
		{"Gastos operativos (estimado)", g.money(s.TotalExpenses), false, false},
		{"Utilidad neta", g.money(s.NetProfit), true, s.NetProfit.IsNegative()},
		{"Margen neto", g.percent(s.NetMarginPct), false, false},
		{"Inversión (estimado)", g.money(s.EstimatedInvestment), false, false},
		{"ROI (estimado)", g.percent(s.ROI), false, false},
		{"Liquidez (estimado)", s.Liquidity.StringFixed(2), false, false},
	}

	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		style := fontstyle.Normal
		if l.bold {
			style = fontstyle.Bold
		}
		var color *props.Color
		if l.loss {
			color = colorLoss
		}
		rows = append(rows, row.New(6).Add(
			col.New(2),
			col.New(5).Add(text.New(l.label, props.Text{Size: 9, Style: style, Top: 1})),
			col.New(3).Add(text.New(l.value, props.Text{
				Size: 9, Style: style, Align: align.Right, Top: 1, Color: color,
			})),
			col.New(2),
		))
	}
	return rows
}

func expenseHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Rubro", 5, align.Left),
		h("Monto", 3, align.Right),
		h("Participación", 2, align.Right),
		h("Tendencia", 2, align.Right),
	)
}

func (g *MarotoReportGenerator) expenseRows(e report.ExpenseBreakdownResult) []core.Row {
	rows := make([]core.Row, 0, len(e.Items)+1)
	for _, it := range e.Items {
		rows = append(rows, row.New(6).Add(
			col.New(5).Add(text.New(it.Category, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(g.money(it.Amount), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(g.percent(it.SharePct), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(g.signedPercent(it.TrendPct), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	rows = append(rows, row.New(7).Add(
		col.New(5).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
		col.New(3).Add(text.New(g.money(e.Total), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
		})),
		col.New(4),
	))
	return rows
}

func estimateNoteRow(fields []string) core.Row {
	note := "Las cifras marcadas como estimadas se calculan con fracciones fijas de los ingresos " +
		"configuradas por el negocio; no provienen de un libro contable."
	if len(fields) > 0 {
		note += " Campos estimados: " + strings.Join(fields, ", ") + "."
	}
	return row.New(12).Add(col.New(12).Add(
		text.New(note, props.Text{Size: 7, Color: colorGray, Top: 2}),
	))
}

func sectionTitle(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(s, props.Text{
		Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
	})))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money pesos sin decimales con separador de miles, ej: "$1.250.000".
func (g *MarotoReportGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%d", d.Round(0).IntPart())
}

func (g *MarotoReportGenerator) percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func (g *MarotoReportGenerator) signedPercent(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + g.percent(d)
	}
	return g.percent(d)
}
