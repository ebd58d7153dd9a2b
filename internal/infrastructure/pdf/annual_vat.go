package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

// RenderAnnualVAT genera el récapitulatif TVA: una fila por trimestre y el total anual.
func (g *Renderer) RenderAnnualVAT(_ context.Context, r fiscal.AnnualVATReport) ([]byte, error) {
	m := newDocument(fmt.Sprintf("Récapitulatif TVA %d", r.Year), r.Practice.Name)

	if err := m.RegisterFooter(footerRows(
		"Document généré le "+frDate(r.GeneratedAt)+" par "+g.appName,
	)...); err != nil {
		return nil, fmt.Errorf("pdf: pie de página: %w", err)
	}

	m.AddRows(bandRows("RÉCAPITULATIF TVA", fmt.Sprintf("Année %d", r.Year), colorGreen)...)
	m.AddRows(textRow(r.Practice.Name, props.Text{Style: fontstyle.Bold, Size: 11}))
	if r.Practice.SIRET != "" {
		m.AddRows(textRow("SIRET: "+r.Practice.SIRET, props.Text{}))
	}
	m.AddRows(row.New(6))
	m.AddRows(sectionTitle("DÉTAIL PAR TRIMESTRE", nil))
	m.AddRows(vatHeaderRow())
	for i, q := range r.Quarters {
		m.AddRows(vatQuarterRow(r.Year, q, i%2 == 0))
	}
	m.AddRows(separator(colorSlate))

	revenue, vat := r.Totals()
	m.AddRows(vatRow(
		[4]string{"TOTAL ANNUEL", money(revenue), money(vat), money(revenue.Add(vat))},
		props.Text{Style: fontstyle.Bold, Top: 2},
		colorGreen,
	))

	return generate(m, "récapitulatif TVA")
}

func vatHeaderRow() core.Row {
	h := func(label string, a align.Type) core.Col {
		return col.New(3).Add(text.New(clean(label), props.Text{
			Style: fontstyle.Bold, Align: a, Color: colorWhite, Top: 3, Left: 3, Right: 3,
		}))
	}
	return row.New(10).Add(
		h("Trimestre", align.Left),
		h("CA HT", align.Right),
		h("TVA Collectée", align.Right),
		h("CA TTC", align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorGreen})
}

func vatQuarterRow(year int, q fiscal.QuarterVAT, striped bool) core.Row {
	r := vatRow(
		[4]string{fmt.Sprintf("T%d %d", q.Quarter, year), money(q.Revenue), money(q.VAT), money(q.TTC())},
		props.Text{Top: 2},
		nil,
	)
	if striped {
		r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

// vatRow: cuatro columnas, la primera a la izquierda y los importes a la derecha.
// lastColor colorea solo la columna TTC.
func vatRow(cells [4]string, base props.Text, lastColor *props.Color) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for i, c := range cells {
		ps := base
		ps.Left, ps.Right = 3, 3
		ps.Align = align.Right
		if i == 0 {
			ps.Align = align.Left
		}
		if i == len(cells)-1 && lastColor != nil {
			ps.Color = lastColor
		}
		cols = append(cols, col.New(3).Add(text.New(clean(c), ps)))
	}
	return row.New(8).Add(cols...)
}
