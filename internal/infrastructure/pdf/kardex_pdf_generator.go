// Package pdf genera el kardex (historial de movimientos) de un producto en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + Sucursal  │  Periodo + Fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SALDO: Actual / Reservado / Disponible / Costo unitario     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Transacción | Tipo | Origen→Destino | Δ | Σ  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Movimientos / Variación neta                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

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

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var typeLabels = map[entity.LedgerType]string{
	entity.LedgerPurchase:   "Compra",
	entity.LedgerSale:       "Venta",
	entity.LedgerTransfer:   "Traslado",
	entity.LedgerAdjustment: "Ajuste",
	entity.LedgerReturn:     "Devolución",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appinventory.MovementReportGenerator = (*KardexPDFGenerator)(nil)

// KardexPDFGenerator implementa inventory.MovementReportGenerator usando Maroto v2.
type KardexPDFGenerator struct {
	author string
}

// NewKardexPDFGenerator construye el generador. author va en los metadatos del PDF.
func NewKardexPDFGenerator(author string) *KardexPDFGenerator {
	return &KardexPDFGenerator{author: author}
}

// GenerateMovementReport genera el PDF y devuelve sus bytes.
func (g *KardexPDFGenerator) GenerateMovementReport(_ context.Context, report *appinventory.MovementReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: kardex vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+report.ProductID, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if report.Record != nil {
		m.AddRows(balanceRow(report.Record))
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(tableHeaderRow())
	if len(report.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el periodo.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range movementRows(report.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto y sucursal (izq), periodo y fecha de emisión (der).
func headerRow(r *appinventory.MovementReport) core.Row {
	branch := nonEmpty(r.BranchID, "Todas las sucursales")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Producto: "+r.ProductID+"   |   Sucursal: "+branch, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Periodo", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.Since.Format("02/01/2006")+" - "+r.GeneratedAt.Format("02/01/2006"), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// balanceRow: saldo vigente del registro cuando el kardex es de una sucursal.
func balanceRow(rec *entity.StockRecord) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 10, Top: 5}),
		)
	}
	return row.New(13).Add(
		cell("STOCK ACTUAL", formatQty(rec.CurrentStock)),
		cell("RESERVADO", formatQty(rec.ReservedStock)),
		cell("DISPONIBLE", formatQty(rec.AvailableStock)),
		cell("COSTO UNITARIO", "$"+formatMoney(rec.UnitCost.StringFixed(0))+" "+rec.Currency),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Transacción", 3, align.Left),
		h("Tipo", 1, align.Left),
		h("Origen → Destino", 2, align.Left),
		h("Costo", 2, align.Right),
		h("Δ", 1, align.Right),
		h("Saldo", 1, align.Right),
	)
}

// movementRows: una fila por asiento, en orden cronológico.
func movementRows(lines []appinventory.MovementReportLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		e := l.Entry
		deltaColor := colorGray
		if l.Delta < 0 {
			deltaColor = colorRed
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(e.CreatedAt.Format("02/01/06 15:04"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(3).Add(text.New(e.TransactionID, props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(typeLabels[e.Type], string(e.Type)), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(route(e), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(e.TotalCost.StringFixed(0)), props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(signed(l.Delta), props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: deltaColor})),
			col.New(1).Add(text.New(signed(l.Running), props.Text{Style: fontstyle.Bold, Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// summaryRow: totales del periodo.
func summaryRow(r *appinventory.MovementReport) core.Row {
	return row.New(14).Add(
		col.New(6),
		col.New(4).Add(
			text.New("Movimientos:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 2}),
			text.New("Variación neta:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 8, Color: colorPrimary}),
		),
		col.New(2).Add(
			text.New(strconv.Itoa(len(r.Lines)), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 2}),
			text.New(signed(r.NetDelta), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 8, Color: colorPrimary}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func route(e *entity.LedgerEntry) string {
	from, to := "—", "—"
	if e.FromBranchID != nil {
		from = *e.FromBranchID
	}
	if e.ToBranchID != nil {
		to = *e.ToBranchID
	}
	return from + " → " + to
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatQty(n int64) string {
	return formatMoney(strconv.FormatInt(n, 10))
}

func signed(n int64) string {
	if n > 0 {
		return "+" + formatQty(n)
	}
	return formatQty(n)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
