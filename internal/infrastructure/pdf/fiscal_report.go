package pdf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

// RenderFiscalReport genera el rapport fiscal del periodo.
//
//	┌─────────────────────────────────────────────┐
//	│  FRANJA: RAPPORT FISCAL + periodo           │
//	│  Consulta (SIRET, RPPS) │ Periodo y duración│
//	│  RÉSUMÉ DES FACTURES (dos columnas)         │
//	│  Répartition par statut                     │
//	│  Top 5 patients                             │
//	│  Indicateurs de performance                 │
//	│  PIE: art. 286 CGI + fecha de generación    │
//	└─────────────────────────────────────────────┘
func (g *Renderer) RenderFiscalReport(_ context.Context, r fiscal.FiscalPeriodReport) ([]byte, error) {
	label := PeriodLabel(r.PeriodType, r.Start)
	m := newDocument("Rapport fiscal "+label, r.Practice.Name)

	if err := m.RegisterFooter(footerRows(
		"Ce rapport est "+legalCitation,
		"Document généré automatiquement par "+g.appName,
		"Date de génération: "+frDateTime(r.GeneratedAt),
	)...); err != nil {
		return nil, fmt.Errorf("pdf: pie de página: %w", err)
	}

	m.AddRows(bandRows("RAPPORT FISCAL", label, colorBlue)...)
	m.AddRows(identityRow(r))
	m.AddRows(row.New(4))
	m.AddRows(summaryRows(r)...)
	m.AddRows(row.New(4))
	m.AddRows(statusRows(r.Status)...)
	if len(r.TopPatients) > 0 {
		m.AddRows(row.New(3))
		m.AddRows(topPatientRows(r.TopPatients)...)
	}
	m.AddRows(row.New(3))
	m.AddRows(kpiRows(r)...)

	return generate(m, "rapport fiscal")
}

// identityRow: consulta a la izquierda, periodo a la derecha.
func identityRow(r fiscal.FiscalPeriodReport) core.Row {
	left := col.New(7).Add(
		text.New("CABINET DENTAIRE", props.Text{Style: fontstyle.Bold, Size: 12, Top: 1}),
		text.New(clean(r.Practice.Name), props.Text{Style: fontstyle.Bold, Top: 8}),
	)
	top := 13.0
	if r.Practice.SIRET != "" {
		left.Add(text.New("SIRET: "+clean(r.Practice.SIRET), props.Text{Top: top}))
		top += 5
	}
	if r.Practice.RPPS != "" {
		left.Add(text.New("RPPS: "+clean(r.Practice.RPPS), props.Text{Top: top}))
	}

	right := col.New(5).Add(
		text.New("PÉRIODE FISCALE", props.Text{Style: fontstyle.Bold, Size: 12, Top: 1}),
		text.New("Du: "+frDate(r.Start), props.Text{Top: 8}),
		text.New("Au: "+frDate(r.End), props.Text{Top: 13}),
		text.New(fmt.Sprintf("Durée: %d jours", r.Days()), props.Text{Top: 18}),
	)
	return row.New(26).Add(left, right)
}

// summaryRows: caja "RÉSUMÉ DES FACTURES" con dos columnas de cifras.
func summaryRows(r fiscal.FiscalPeriodReport) []core.Row {
	style := &props.Cell{BackgroundColor: colorSky}
	pair := func(l1, v1 string, c1 *props.Color, l2, v2 string, c2 *props.Color) core.Row {
		return row.New(7).Add(
			col.New(3).Add(text.New(clean(l1), props.Text{Style: fontstyle.Bold, Top: 1.5, Left: 3})),
			col.New(3).Add(text.New(clean(v1), props.Text{Align: align.Right, Color: c1, Top: 1.5, Right: 3})),
			col.New(3).Add(text.New(clean(l2), props.Text{Style: fontstyle.Bold, Top: 1.5, Left: 3})),
			col.New(3).Add(text.New(clean(v2), props.Text{Align: align.Right, Color: c2, Top: 1.5, Right: 3})),
		).WithStyle(style)
	}
	return []core.Row{
		row.New(9).Add(col.New(12).Add(
			text.New("RÉSUMÉ DES FACTURES", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: colorNavy, Top: 2,
			}),
		)).WithStyle(style),
		pair("Factures émises:", strconv.Itoa(r.InvoicesCount), nil,
			"Paiements reçus:", strconv.Itoa(r.PaymentsCount), nil),
		pair("Chiffre d'affaires HT:", money(r.NetRevenue), colorGreen,
			"TVA collectée:", money(r.NetTax), nil),
		pair("Total TTC:", money(r.NetTotal()), colorBlue,
			"Encaissé:", money(r.TotalPaid), colorGreen),
		row.New(2).WithStyle(style),
	}
}

func statusRows(s fiscal.StatusBreakdown) []core.Row {
	entries := []struct {
		label string
		count int
		color *props.Color
	}{
		{"Brouillons", s.Draft, colorSlate},
		{"Envoyées", s.Sent, colorBlue},
		{"Partielles", s.Partial, &props.Color{Red: 234, Green: 179, Blue: 8}},
		{"Payées", s.Paid, colorGreen},
		{"Annulées", s.Cancelled, colorRed},
	}
	rows := []core.Row{sectionTitle("RÉPARTITION PAR STATUT", nil)}
	for _, e := range entries {
		if e.count == 0 {
			continue
		}
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New("•", props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Right, Color: e.color})),
			col.New(11).Add(text.New(fmt.Sprintf("%s: %d", e.label, e.count), props.Text{Top: 1, Left: 2})),
		))
	}
	return rows
}

func topPatientRows(patients []fiscal.PatientAmount) []core.Row {
	rows := []core.Row{sectionTitle(fmt.Sprintf("TOP %d PATIENTS", fiscal.TopPatientsLimit), nil)}
	for i, p := range patients {
		r := row.New(7).Add(
			col.New(8).Add(text.New(fmt.Sprintf("%d. %s", i+1, clean(p.Name)), props.Text{Top: 1.5, Left: 3})),
			col.New(4).Add(text.New(money(p.Amount), props.Text{
				Style: fontstyle.Bold, Align: align.Right, Top: 1.5, Right: 3,
			})),
		)
		if i%2 == 0 {
			r.WithStyle(&props.Cell{BackgroundColor: colorSky})
		}
		rows = append(rows, r)
	}
	return rows
}

func kpiRows(r fiscal.FiscalPeriodReport) []core.Row {
	return []core.Row{
		sectionTitle("INDICATEURS DE PERFORMANCE", nil),
		textRow("Montant moyen par facture: "+money(r.AveragePerInvoice()), props.Text{Left: 5}),
		textRow("Taux d'encaissement: "+percent(r.CollectionRate()), props.Text{Left: 5}),
		textRow("Chiffre d'affaires moyen/jour: "+money(r.DailyRevenue()), props.Text{Left: 5}),
	}
}
