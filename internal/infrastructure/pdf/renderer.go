// Package pdf genera con Maroto v2 los documentos fiscales imprimibles de la consulta:
// avoir, rapport fiscal del periodo y récapitulatif TVA anual.
//
// Maroto pagina solo: una fila que no cabe en el espacio restante de la página
// se dibuja al principio de la siguiente.
package pdf

import (
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

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorBlue      = &props.Color{Red: 59, Green: 130, Blue: 246}
	colorNavy      = &props.Color{Red: 30, Green: 58, Blue: 138}
	colorGreen     = &props.Color{Red: 34, Green: 197, Blue: 94}
	colorRed       = &props.Color{Red: 239, Green: 68, Blue: 68}
	colorDarkRed   = &props.Color{Red: 185, Green: 28, Blue: 28}
	colorRose      = &props.Color{Red: 254, Green: 242, Blue: 242}
	colorSky       = &props.Color{Red: 239, Green: 246, Blue: 255}
	colorStripe    = &props.Color{Red: 248, Green: 250, Blue: 252}
	colorSlate     = &props.Color{Red: 100, Green: 116, Blue: 139}
	colorWhite     = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorLightGray = &props.Color{Red: 200, Green: 200, Blue: 200}
)

const legalCitation = "conforme à l'article 286 du Code Général des Impôts"

var _ fiscal.PDFRenderer = (*Renderer)(nil)

// Renderer implementa fiscal.PDFRenderer.
type Renderer struct {
	appName string
}

// NewRenderer construye el renderer; appName firma los pies de página.
func NewRenderer(appName string) *Renderer {
	if appName == "" {
		appName = "DentalCloud"
	}
	return &Renderer{appName: appName}
}

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(clean(title), true).
		WithAuthor(clean(author), true).
		Build()
	return maroto.New(cfg)
}

func generate(m core.Maroto, what string) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar %s: %w", what, err)
	}
	return doc.GetBytes(), nil
}

// ── Bloques comunes ───────────────────────────────────────────────────────────

// bandRows: franja de color a todo el ancho con título y subtítulo centrados.
func bandRows(title, subtitle string, bg *props.Color) []core.Row {
	style := &props.Cell{BackgroundColor: bg}
	return []core.Row{
		row.New(14).Add(col.New(12).Add(
			text.New(clean(title), props.Text{
				Style: fontstyle.Bold, Size: 20, Align: align.Center, Color: colorWhite, Top: 4,
			}),
		)).WithStyle(style),
		row.New(12).Add(col.New(12).Add(
			text.New(clean(subtitle), props.Text{
				Size: 14, Align: align.Center, Color: colorWhite, Top: 1,
			}),
		)).WithStyle(style),
		row.New(6),
	}
}

// sectionTitle: título en negrita de una sección.
func sectionTitle(title string, color *props.Color) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(clean(title), props.Text{Style: fontstyle.Bold, Size: 12, Color: color, Top: 2}),
	))
}

// textRow: una línea de texto simple.
func textRow(s string, ps props.Text) core.Row {
	if ps.Size == 0 {
		ps.Size = 10
	}
	return row.New(ps.Size/2 + 1).Add(col.New(12).Add(text.New(clean(s), ps)))
}

// labelValueRow: etiqueta a la izquierda y valor a la derecha dentro de size columnas.
func labelValueRow(label, value string, offset, labelSize, valueSize int, valueColor *props.Color, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	cols := make([]core.Col, 0, 3)
	if offset > 0 {
		cols = append(cols, col.New(offset))
	}
	cols = append(cols,
		col.New(labelSize).Add(text.New(clean(label), props.Text{Style: style, Top: 1})),
		col.New(valueSize).Add(text.New(clean(value), props.Text{
			Style: style, Align: align.Right, Color: valueColor, Top: 1,
		})),
	)
	return row.New(6).Add(cols...)
}

func separator(color *props.Color) core.Row {
	return line.NewRow(3, props.Line{Color: color, Thickness: 0.3})
}

// footerRows: pie centrado en gris con las líneas dadas.
func footerRows(lines ...string) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(clean(l), props.Text{Size: 8, Align: align.Center, Color: colorSlate}),
		)))
	}
	return rows
}

func practiceLines(p fiscal.Practice) []string {
	var out []string
	if p.Address != "" {
		out = append(out, p.Address)
	}
	if p.Phone != "" {
		out = append(out, "Tél: "+p.Phone)
	}
	if p.Email != "" {
		out = append(out, "Email: "+p.Email)
	}
	if p.RPPS != "" {
		out = append(out, "RPPS: "+p.RPPS)
	}
	if p.SIRET != "" {
		out = append(out, "SIRET: "+p.SIRET)
	}
	return out
}
