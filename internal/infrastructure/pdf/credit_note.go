package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// RenderCreditNote genera el PDF del avoir. Todos los importes se muestran en negativo.
//
//	┌─────────────────────────────────────────────┐
//	│  Consulta (dirección, RPPS, SIRET) │ AVOIR  │
//	│  PATIENT                                    │
//	│  MOTIF DE L'AVOIR                           │
//	│  TABLA: Description|CCAM|Dent|Qté|PU|CPAM|Total
//	│  TOTALES + reparto CPAM / mutuelle / patient│
//	│  PIE: art. 286 CGI, certificado y huella    │
//	└─────────────────────────────────────────────┘
func (g *Renderer) RenderCreditNote(_ context.Context, doc fiscal.CreditNoteDocument) ([]byte, error) {
	cn := doc.CreditNote
	if cn == nil {
		return nil, fmt.Errorf("pdf: avoir vacío")
	}
	m := newDocument("Avoir "+cn.Number, doc.Practice.Name)

	footer := []string{
		"Cet avoir est " + legalCitation,
		"Journal d'audit inaltérable - Conservation 6 ans minimum",
	}
	if doc.CertificateSerial != "" {
		footer = append(footer, "Certificat numérique: "+doc.CertificateSerial)
	}
	if doc.Hash != "" {
		footer = append(footer, "Hash de vérification: "+doc.Hash)
	}
	if err := m.RegisterFooter(footerRows(footer...)...); err != nil {
		return nil, fmt.Errorf("pdf: pie de página: %w", err)
	}

	m.AddRows(creditNoteHeaderRow(doc))
	m.AddRows(row.New(6))
	m.AddRows(patientRows(cn.PatientName, doc.PatientAddress, doc.PatientSecurityNumber)...)
	m.AddRows(row.New(5))
	m.AddRows(reasonRow(cn))
	m.AddRows(row.New(5))
	m.AddRows(sectionTitle("DÉTAIL DES ACTES CORRIGÉS", nil))
	m.AddRows(itemsHeaderRow())
	for i, it := range cn.Items {
		m.AddRows(itemRow(it, i%2 == 1))
	}
	m.AddRows(separator(colorLightGray))
	m.AddRows(creditTotalsRows(cn)...)
	if cn.Notes != "" {
		m.AddRows(row.New(4))
		m.AddRows(textRow("Notes:", props.Text{Style: fontstyle.Italic, Size: 9}))
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New(clean(cn.Notes), props.Text{Style: fontstyle.Italic, Size: 9}),
		)))
	}

	return generate(m, "avoir")
}

// creditNoteHeaderRow: consulta a la izquierda y caja AVOIR a la derecha.
func creditNoteHeaderRow(doc fiscal.CreditNoteDocument) core.Row {
	cn := doc.CreditNote
	left := col.New(7).Add(text.New(clean(doc.Practice.Name), props.Text{Style: fontstyle.Bold, Top: 1}))
	top := 6.0
	for _, l := range practiceLines(doc.Practice) {
		left.Add(text.New(clean(l), props.Text{Top: top}))
		top += 5
	}

	box := col.New(5).Add(
		text.New("AVOIR", props.Text{Style: fontstyle.Bold, Size: 16, Align: align.Center, Color: colorDarkRed, Top: 3}),
		text.New("N° "+clean(cn.Number), props.Text{Style: fontstyle.Bold, Align: align.Center, Top: 12}),
		text.New("Date: "+frDate(cn.Date), props.Text{Align: align.Center, Top: 18}),
		text.New("Facture: "+clean(cn.InvoiceNumber), props.Text{Size: 9, Align: align.Center, Top: 24}),
		text.New("du "+frDate(cn.InvoiceDate), props.Text{Size: 9, Align: align.Center, Top: 29}),
	).WithStyle(&props.Cell{BackgroundColor: colorRose, BorderColor: colorRed, BorderThickness: 0.5})

	height := 38.0
	if top+2 > height {
		height = top + 2
	}
	return row.New(height).Add(left, box)
}

func patientRows(name, address, securityNumber string) []core.Row {
	rows := []core.Row{
		sectionTitle("PATIENT", nil),
		textRow(name, props.Text{}),
	}
	for _, l := range strings.Split(address, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			rows = append(rows, textRow(l, props.Text{}))
		}
	}
	if securityNumber != "" {
		rows = append(rows, textRow("N° Sécu: "+securityNumber, props.Text{}))
	}
	return rows
}

func reasonRow(cn *entity.CreditNote) core.Row {
	reason := creditTypeLabel(cn.CreditType)
	if cn.Reason != "" {
		reason += " - " + cn.Reason
	}
	return row.New(10).Add(
		col.New(4).Add(text.New("MOTIF DE L'AVOIR:", props.Text{
			Style: fontstyle.Bold, Color: colorDarkRed, Top: 3, Left: 2,
		})),
		col.New(8).Add(text.New(clean(reason), props.Text{Top: 3})),
	).WithStyle(&props.Cell{BackgroundColor: colorRose})
}

// anchos de la tabla de actos (suman 12)
var itemCols = [7]int{4, 2, 1, 1, 1, 1, 2}

func itemsHeaderRow() core.Row {
	labels := [7]string{"Description", "CCAM", "Dent", "Qté", "Prix Unit.", "CPAM", "Total"}
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Left
		if i >= 3 {
			a = align.Right
		}
		cols = append(cols, col.New(itemCols[i]).Add(text.New(clean(l), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2.5, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorRed})
}

func itemRow(it entity.CreditNoteItem, striped bool) core.Row {
	values := [7]string{
		it.Description,
		nonEmpty(it.CCAMCode, "-"),
		nonEmpty(it.ToothNumber, "-"),
		quantity(it.Quantity),
		negMoney(it.UnitPrice),
		negMoney(it.CPAMAmount),
		negMoney(it.Total),
	}
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		ps := props.Text{Size: 8, Top: 1.5, Left: 1, Right: 1}
		if i >= 3 {
			ps.Align = align.Right
		}
		if i == len(values)-1 {
			ps.Color = colorDarkRed
		}
		cols = append(cols, col.New(itemCols[i]).Add(text.New(clean(v), ps)))
	}
	// las descripciones largas ocupan varias líneas de 4 mm
	height := 7.0
	if n := len(it.Description) / 38; n > 0 {
		height += float64(n) * 4
	}
	r := row.New(height).Add(cols...)
	if striped {
		r.WithStyle(&props.Cell{BackgroundColor: colorRose})
	}
	return r
}

func creditTotalsRows(cn *entity.CreditNote) []core.Row {
	rows := []core.Row{
		labelValueRow("Sous-total HT:", negMoney(cn.Subtotal), 7, 3, 2, colorDarkRed, false),
	}
	if cn.TaxRate.IsPositive() {
		rows = append(rows, labelValueRow(
			fmt.Sprintf("TVA (%s %%):", strings.Replace(cn.TaxRate.StringFixed(2), ".", ",", 1)),
			negMoney(cn.TaxAmount), 7, 3, 2, colorDarkRed, false))
	}
	rows = append(rows,
		labelValueRow("Total TTC:", negMoney(cn.Total), 7, 3, 2, colorDarkRed, true),
		row.New(4),
	)

	split := &props.Cell{BackgroundColor: colorRose}
	rows = append(rows,
		labelValueRow("Part CPAM:", negMoney(cn.CPAMAmount), 7, 3, 2, colorDarkRed, false).WithStyle(split),
		labelValueRow("Part Mutuelle:", negMoney(cn.MutuelleAmount), 7, 3, 2, colorDarkRed, false).WithStyle(split),
		labelValueRow("Part Patient:", negMoney(cn.PatientAmount), 7, 3, 2, colorDarkRed, true).WithStyle(split),
	)
	return rows
}
