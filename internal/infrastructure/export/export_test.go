package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/export"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sample: una factura con IVA y su cobro con tarjeta (5 líneas, 2 diarios).
func sample(t *testing.T) (fec.Export, []fec.Line) {
	t.Helper()
	exp := fec.Export{
		SIRET: "12345678900011",
		Start: date("2024-01-01"),
		End:   date("2024-03-31"),
		Invoices: []fec.Invoice{{
			ID: "inv-1", Number: "FAC-001", Date: date("2024-03-15"), PatientID: "11111111-aaaa",
			PatientName: "Jeanne Martin", Total: dec("120"), Subtotal: dec("100"), TaxAmount: dec("20"),
			Status: "paid",
		}},
		Payments: []fec.Payment{{
			ID: "abcdef0123456789", InvoiceNumber: "FAC-001", Date: date("2024-03-20"),
			Amount: dec("50"), Method: "card", Source: "patient",
			PatientID: "11111111-aaaa", PatientName: "Jeanne Martin",
		}},
	}
	lines, err := exp.Lines()
	require.NoError(t, err)
	return exp, lines
}

// ──────────────────────────────────────────────────────────────────────────────
// XML
// ──────────────────────────────────────────────────────────────────────────────

func TestXMLEncoder_Estructura(t *testing.T) {
	exp, lines := sample(t)

	out, err := export.NewXMLEncoder().Encode(exp, lines)
	require.NoError(t, err)
	assert.Equal(t, "xml", out.Extension)
	assert.Equal(t, "application/xml", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Content, []byte("<?xml")))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out.Content))
	root := doc.SelectElement("comptabilite")
	require.NotNil(t, root)
	assert.Equal(t, "2024-03-31", root.FindElement("./exercice/DateCloture").Text())

	journals := root.FindElements("./exercice/journal")
	require.Len(t, journals, 2, "ventas y banco")
	assert.Equal(t, "VTE", journals[0].SelectElement("JournalCode").Text())
	assert.Len(t, root.FindElements("//ecriture"), 2)
	assert.Len(t, root.FindElements("//ligne"), len(lines))

	first := root.FindElement("//ecriture/ligne")
	assert.Equal(t, "411000", first.SelectElement("CompteNum").Text())
	assert.Equal(t, "120.00", first.SelectElement("Debit").Text())
	assert.Equal(t, "2024-03-15", root.FindElement("//ecriture/EcritureDate").Text())
	assert.Equal(t, "FAC-001", root.FindElement("./exercice/journal[2]/ecriture/EcritureLet").Text())
}

func TestXMLEncoder_DigestDeterministaYSensible(t *testing.T) {
	exp, lines := sample(t)
	enc := export.NewXMLEncoder()

	a, err := enc.Encode(exp, lines)
	require.NoError(t, err)
	b, err := enc.Encode(exp, lines)
	require.NoError(t, err)
	assert.Len(t, a.Digest, 64)
	assert.Equal(t, a.Digest, b.Digest)

	lines[0].Debit = dec("121")
	c, err := enc.Encode(exp, lines)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest, c.Digest, "cambiar un importe cambia la huella")
}

func TestDigest_IgnoraDiferenciasNoCanonicas(t *testing.T) {
	a, err := export.Digest([]byte(`<a x="1" y="2"><b/></a>`))
	require.NoError(t, err)
	b, err := export.Digest([]byte(`<a y="2"  x="1"><b></b></a>`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// ──────────────────────────────────────────────────────────────────────────────
// XLSX
// ──────────────────────────────────────────────────────────────────────────────

func TestXLSXEncoder_CabeceraYFilas(t *testing.T) {
	exp, lines := sample(t)

	out, err := export.NewXLSXEncoder().Encode(exp, lines)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", out.Extension)
	assert.True(t, strings.HasPrefix(out.ContentType, "application/vnd.openxmlformats"))

	f, err := excelize.OpenReader(bytes.NewReader(out.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("FEC")
	require.NoError(t, err)
	require.Len(t, rows, len(lines)+1)
	assert.Equal(t, fec.Header, rows[0])
	assert.Equal(t, "VTE", rows[1][0])
	assert.Equal(t, "FAC-001", rows[1][2])

	debit, err := f.GetCellValue("FEC", "L2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "120", debit, "los importes se guardan como número")
}
