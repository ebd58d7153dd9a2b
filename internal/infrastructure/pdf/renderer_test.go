package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/pdf"
)

var pageObject = regexp.MustCompile(`/Type /Page[^s]`)

func pages(b []byte) int { return len(pageObject.FindAll(b, -1)) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func practice() fiscal.Practice {
	return fiscal.Practice{
		Name: "Cabinet Dupont", SIRET: "12345678900011", RPPS: "10001234567",
		Address: "12 rue de la Paix, 75002 Paris", Phone: "01 23 45 67 89", Email: "contact@dupont.fr",
	}
}

func creditNote(items int) *entity.CreditNote {
	cn := &entity.CreditNote{
		Number: "AV-001", Date: day("2024-03-25"), InvoiceNumber: "FAC-001", InvoiceDate: day("2024-03-15"),
		PatientName: "Jeanne Martin", CreditType: entity.CreditTypeCorrection, Reason: "Acte facturé deux fois",
		Subtotal: dec("50.00"), TaxRate: dec("20"), TaxAmount: dec("10.00"), Total: dec("60.00"),
		CPAMAmount: dec("30.00"), MutuelleAmount: dec("20.00"), PatientAmount: dec("10.00"),
		Notes: "Régularisation suite à double saisie.",
	}
	for i := 0; i < items; i++ {
		cn.Items = append(cn.Items, entity.CreditNoteItem{
			Description: fmt.Sprintf("Détartrage et polissage %d", i+1),
			CCAMCode:    "HBJD001", ToothNumber: "11",
			Quantity: decimal.NewFromInt(1), UnitPrice: dec("28.92"), CPAMAmount: dec("20.24"), Total: dec("28.92"),
		})
	}
	return cn
}

// ──────────────────────────────────────────────────────────────────────────────
// Avoir
// ──────────────────────────────────────────────────────────────────────────────

func TestRenderCreditNote_GeneraPDF(t *testing.T) {
	r := pdf.NewRenderer("DentalCloud")

	out, err := r.RenderCreditNote(context.Background(), fiscal.CreditNoteDocument{
		Practice: practice(), CreditNote: creditNote(2),
		PatientAddress: "3 avenue Foch\n69006 Lyon", PatientSecurityNumber: "2850375123456",
		CertificateSerial: "0a1b2c3d4e5f", Hash: "9d1870010fbd2b37", GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "la salida debe ser un PDF")
	assert.Equal(t, 1, pages(out))
}

func TestRenderCreditNote_MuchasLineasPaginan(t *testing.T) {
	r := pdf.NewRenderer("DentalCloud")

	out, err := r.RenderCreditNote(context.Background(), fiscal.CreditNoteDocument{
		Practice: practice(), CreditNote: creditNote(120), GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Greater(t, pages(out), 1, "las filas que no caben pasan a una página nueva")
}

func TestRenderCreditNote_SinAvoir(t *testing.T) {
	_, err := pdf.NewRenderer("").RenderCreditNote(context.Background(), fiscal.CreditNoteDocument{})
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rapport fiscal y récapitulatif TVA
// ──────────────────────────────────────────────────────────────────────────────

func TestRenderFiscalReport_GeneraPDF(t *testing.T) {
	r := pdf.NewRenderer("DentalCloud")

	out, err := r.RenderFiscalReport(context.Background(), fiscal.FiscalPeriodReport{
		Practice: practice(), PeriodType: fiscal.PeriodMonth,
		Start: day("2024-03-01"), End: day("2024-03-31"),
		InvoicesCount: 2, PaymentsCount: 1,
		TotalRevenue: dec("300"), TotalTax: dec("60"), NetRevenue: dec("250"), NetTax: dec("50"),
		TotalPaid: dec("50"),
		Status:    fiscal.StatusBreakdown{Draft: 1, Sent: 1, Paid: 1, Cancelled: 1},
		TopPatients: []fiscal.PatientAmount{
			{Name: "Paul Durand", Amount: dec("240")},
			{Name: "Jeanne Martin", Amount: dec("120")},
		},
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.GreaterOrEqual(t, pages(out), 1)
}

func TestRenderFiscalReport_PeriodoVacio(t *testing.T) {
	out, err := pdf.NewRenderer("DentalCloud").RenderFiscalReport(context.Background(), fiscal.FiscalPeriodReport{
		Practice: fiscal.Practice{Name: "Cabinet"}, PeriodType: fiscal.PeriodYear,
		Start: day("2024-01-01"), End: day("2024-12-31"), GeneratedAt: time.Now(),
	})
	require.NoError(t, err, "sin facturas el rapport se genera igual")
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderAnnualVAT_GeneraPDF(t *testing.T) {
	out, err := pdf.NewRenderer("DentalCloud").RenderAnnualVAT(context.Background(), fiscal.AnnualVATReport{
		Practice: practice(), Year: 2024,
		Quarters: []fiscal.QuarterVAT{
			{Quarter: 1, Revenue: dec("50"), VAT: dec("10")},
			{Quarter: 2, Revenue: dec("200"), VAT: dec("40")},
			{Quarter: 3, Revenue: decimal.Zero, VAT: decimal.Zero},
			{Quarter: 4, Revenue: decimal.Zero, VAT: decimal.Zero},
		},
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 1, pages(out))
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "mars 2024", pdf.PeriodLabel(fiscal.PeriodMonth, day("2024-03-01")))
	assert.Equal(t, "T3 2024", pdf.PeriodLabel(fiscal.PeriodQuarter, day("2024-07-01")))
	assert.Equal(t, "Année 2024", pdf.PeriodLabel(fiscal.PeriodYear, day("2024-01-01")))
	assert.Equal(t, "décembre 2023", pdf.PeriodLabel("", day("2023-12-01")))
}
