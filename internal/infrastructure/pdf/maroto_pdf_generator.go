// Package pdf implementa la exportación de la agenda a PDF con Maroto v2.
//
// Layout de la página A4 apaisada:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período      │  Generado por + fecha       │
//	│  ──────────────────────────────────────────────────────────  │
//	│  RESUMEN: eventos por columna del tablero                    │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: Início | Fim | Tipo | Título | Setor | Situação      │
//	│  ──────────────────────────────────────────────────────────  │
//	│  FOOTER: total de eventos                                    │
//	└──────────────────────────────────────────────────────────────┘
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
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/domain/workflow"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

const (
	dateTimeLayout = "02/01/2006 15:04"
	dateLayout     = "02/01/2006"
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa agenda.AgendaPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateAgendaPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateAgendaPDF(ctx context.Context, report agenda.AgendaReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(nonEmpty(report.Title, "Agenda"), true).
		WithAuthor(nonEmpty(report.GeneratedBy, "Agenda"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Rows))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Rows)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(report.Rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y período (izq), autor y fecha de generación (der).
func headerRow(r agenda.AgendaReport) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(nonEmpty(r.Title, "Agenda"), props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Período: "+period(r), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Gerado por "+nonEmpty(r.GeneratedBy, "—"), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(r.GeneratedAt.Format(dateTimeLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// summaryRow: un contador por columna del tablero.
func summaryRow(rows []agenda.AgendaRow) core.Row {
	counts := make(map[string]int, 4)
	for _, r := range rows {
		counts[r.Column]++
	}
	cols := make([]core.Col, 0, 4)
	for _, c := range workflow.Columns() {
		cols = append(cols, col.New(3).Add(
			text.New(c.Label(), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d", counts[c.Label()]), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 6,
			}),
		))
	}
	return row.New(14).Add(cols...)
}

// tableHeaderRow: cabecera de la tabla de eventos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Início", 2, align.Left),
		h("Fim", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Título", 3, align.Left),
		h("Setor", 2, align.Left),
		h("Situação", 1, align.Left),
		h("Autor", 1, align.Left),
	)
}

// tableRows: una fila por evento, con fondo alternado.
func tableRows(rows []agenda.AgendaRow) []core.Row {
	if len(rows) == 0 {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New("Nenhum evento no período.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		))}
	}
	result := make([]core.Row, 0, len(rows))
	cell := func(s string, size int) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Top: 1, Left: 1, Right: 1}))
	}
	for i, r := range rows {
		end := ""
		if !r.End.IsZero() && !r.End.Equal(r.Start) {
			end = r.End.Format(dateTimeLayout)
		}
		rr := row.New(7).Add(
			cell(r.Start.Format(dateTimeLayout), 2),
			cell(end, 2),
			cell(r.Type, 1),
			cell(r.Title, 3),
			cell(nonEmpty(r.Sector, "—"), 2),
			cell(r.Column, 1),
			cell(nonEmpty(r.Author, "—"), 1),
		)
		if i%2 == 1 {
			rr.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, rr)
	}
	return result
}

// footerRow: total de eventos exportados.
func footerRow(total int) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de eventos: %d", total), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// period texto del intervalo; extremos abiertos se muestran como "…".
func period(r agenda.AgendaReport) string {
	from, to := "…", "…"
	if !r.From.IsZero() {
		from = r.From.Format(dateLayout)
	}
	if !r.To.IsZero() {
		to = r.To.Format(dateLayout)
	}
	if r.From.IsZero() && r.To.IsZero() {
		return "todos"
	}
	return from + " a " + to
}
