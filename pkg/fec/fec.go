// Package fec genera el Fichier des Écritures Comptables (art. A47 A-1 du LPF)
// a partir de facturas, pagos y notas de crédito (avoirs) de una consulta dental.
//
// Todas las funciones son puras: cada entidad produce sus líneas sin estado compartido
// y el único paso global es la ordenación final.
package fec

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato AAAAMMJJ exigido para todas las fechas del FEC.
const DateLayout = "20060102"

// DefaultCurrency divisa de los importes (Idevise).
const DefaultCurrency = "EUR"

// Estados de factura excluidos de la contabilidad.
const (
	StatusDraft     = "draft"
	StatusCancelled = "cancelled"
)

// Header columnas fijas del FEC, en orden.
var Header = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate",
	"CompteNum", "CompteLib", "CompAuxNum", "CompAuxLib",
	"PieceRef", "PieceDate", "EcritureLib",
	"Debit", "Credit", "EcritureLet", "DateLet", "ValidDate",
	"Montantdevise", "Idevise",
}

// ErrUnbalanced una agrupación (factura, pago o avoir) no cuadra debe/haber.
var ErrUnbalanced = errors.New("fec: écriture déséquilibrée")

// Line una escritura contable (18 campos). Debit/Credit se guardan como decimal para
// poder verificar el cuadre antes de serializar.
type Line struct {
	JournalCode   string
	JournalLib    string
	EcritureNum   string
	EcritureDate  string
	CompteNum     string
	CompteLib     string
	CompAuxNum    string
	CompAuxLib    string
	PieceRef      string
	PieceDate     string
	EcritureLib   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	EcritureLet   string
	DateLet       string
	ValidDate     string
	MontantDevise decimal.Decimal
	Idevise       string
}

// Invoice proyección de una factura paciente para el FEC.
type Invoice struct {
	ID          string
	Number      string
	Date        time.Time
	PatientID   string
	PatientName string
	Total       decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Status      string
}

// Payment proyección de un cobro asociado a una factura.
type Payment struct {
	ID            string
	InvoiceID     string
	InvoiceNumber string
	Date          time.Time
	Amount        decimal.Decimal
	Method        string // cash, check, card, transfer, cpam, mutuelle
	Source        string // patient, cpam, mutuelle
	PatientID     string
	PatientName   string
}

// CreditNote proyección de un avoir sobre una factura previa.
type CreditNote struct {
	ID            string
	Number        string
	Date          time.Time
	InvoiceNumber string
	PatientID     string
	PatientName   string
	Total         decimal.Decimal
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
}

// Export agrupa los datos de un periodo y la identificación del emisor.
type Export struct {
	Invoices    []Invoice
	Payments    []Payment
	CreditNotes []CreditNote
	SIRET       string
	Start       time.Time
	End         time.Time
}

// Excluded informa si la factura no genera escrituras (borrador o anulada).
func Excluded(inv Invoice) bool {
	s := strings.ToLower(inv.Status)
	return s == StatusDraft || s == StatusCancelled
}

// InvoiceLines: débito cliente por el total, crédito ingresos por la base y crédito
// IVA colectado por el impuesto (estas dos solo si son > 0).
func InvoiceLines(inv Invoice) []Line {
	date := inv.Date.Format(DateLayout)
	base := Line{
		JournalCode:  JournalSales.Code,
		JournalLib:   JournalSales.Label,
		EcritureNum:  inv.Number,
		EcritureDate: date,
		PieceRef:     inv.Number,
		PieceDate:    date,
		ValidDate:    date,
		Idevise:      DefaultCurrency,
	}
	label := "Facture patient " + inv.Number

	lines := make([]Line, 0, 3)
	lines = append(lines, debit(base, AccountReceivable, PatientAccountNumber(inv.PatientID), inv.PatientName, label, inv.Total))
	if inv.Subtotal.IsPositive() {
		lines = append(lines, credit(base, AccountRevenue, "", "", label, inv.Subtotal))
	}
	if inv.TaxAmount.IsPositive() {
		lines = append(lines, credit(base, AccountVATOut, "", "", "TVA facture "+inv.Number, inv.TaxAmount))
	}
	return lines
}

// PaymentLines: débito tesorería según medio de pago, crédito cuenta cliente.
// Ambas líneas llevan el lettrage con el número de factura para conciliarlas.
func PaymentLines(p Payment) []Line {
	date := p.Date.Format(DateLayout)
	base := Line{
		JournalCode:  JournalBank.Code,
		JournalLib:   JournalBank.Label,
		EcritureNum:  "PAY-" + prefix(p.ID, 8),
		EcritureDate: date,
		PieceRef:     p.InvoiceNumber,
		PieceDate:    date,
		EcritureLet:  p.InvoiceNumber,
		DateLet:      date,
		ValidDate:    date,
		Idevise:      DefaultCurrency,
	}
	treasuryLabel := "Règlement facture " + p.InvoiceNumber
	if p.Source != "" {
		treasuryLabel += " - " + p.Source
	}
	return []Line{
		debit(base, TreasuryAccount(p.Method), "", "", treasuryLabel, p.Amount),
		credit(base, AccountReceivable, PatientAccountNumber(p.PatientID), p.PatientName, "Règlement facture "+p.InvoiceNumber, p.Amount),
	}
}

// CreditNoteLines invierte las escrituras de la factura: crédito cliente por el
// total, débito ingresos y débito IVA.
func CreditNoteLines(cn CreditNote) []Line {
	date := cn.Date.Format(DateLayout)
	base := Line{
		JournalCode:  JournalSales.Code,
		JournalLib:   JournalSales.Label,
		EcritureNum:  cn.Number,
		EcritureDate: date,
		PieceRef:     cn.Number,
		PieceDate:    date,
		ValidDate:    date,
		Idevise:      DefaultCurrency,
	}
	lines := make([]Line, 0, 3)
	lines = append(lines, credit(base, AccountReceivable, PatientAccountNumber(cn.PatientID), cn.PatientName,
		fmt.Sprintf("Avoir %s sur facture %s", cn.Number, cn.InvoiceNumber), cn.Total))
	if cn.Subtotal.IsPositive() {
		lines = append(lines, debit(base, AccountRevenue, "", "", "Avoir "+cn.Number, cn.Subtotal))
	}
	if cn.TaxAmount.IsPositive() {
		lines = append(lines, debit(base, AccountVATOut, "", "", "TVA avoir "+cn.Number, cn.TaxAmount))
	}
	return lines
}

// Balanced indica si la suma de débitos es igual a la de créditos.
func Balanced(lines []Line) bool {
	d, c := Totals(lines)
	return d.Equal(c)
}

// Totals devuelve la suma de débitos y de créditos.
func Totals(lines []Line) (debit, credit decimal.Decimal) {
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Lines genera, valida el cuadre por agrupación y ordena todas las escrituras del periodo.
func (e Export) Lines() ([]Line, error) {
	return Lines(e.Invoices, e.Payments, e.CreditNotes)
}

// Lines versión funcional de Export.Lines.
func Lines(invoices []Invoice, payments []Payment, creditNotes []CreditNote) ([]Line, error) {
	var all []Line
	for _, inv := range invoices {
		if Excluded(inv) {
			continue
		}
		group := InvoiceLines(inv)
		if !Balanced(group) {
			return nil, fmt.Errorf("%w: facture %s", ErrUnbalanced, inv.Number)
		}
		all = append(all, group...)
	}
	for _, p := range payments {
		all = append(all, PaymentLines(p)...)
	}
	for _, cn := range creditNotes {
		group := CreditNoteLines(cn)
		if !Balanced(group) {
			return nil, fmt.Errorf("%w: avoir %s", ErrUnbalanced, cn.Number)
		}
		all = append(all, group...)
	}
	SortLines(all)
	return all, nil
}

// SortLines ordena por fecha de escritura y, a igual fecha, por número (orden estable).
func SortLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].EcritureDate != lines[j].EcritureDate {
			return lines[i].EcritureDate < lines[j].EcritureDate
		}
		return lines[i].EcritureNum < lines[j].EcritureNum
	})
}

// Generate produce el contenido completo del fichero (cabecera + una fila por línea).
func (e Export) Generate() (string, error) {
	lines, err := e.Lines()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := Write(&sb, lines); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Generate atajo sin construir el Export.
func Generate(invoices []Invoice, payments []Payment, creditNotes []CreditNote, siret string, start, end time.Time) (string, error) {
	return Export{Invoices: invoices, Payments: payments, CreditNotes: creditNotes, SIRET: siret, Start: start, End: end}.Generate()
}

// Write serializa las líneas con separador '|' y salto de línea '\n'.
func Write(w io.Writer, lines []Line) error {
	if _, err := io.WriteString(w, strings.Join(Header, "|")+"\n"); err != nil {
		return fmt.Errorf("fec: escribir cabecera: %w", err)
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, strings.Join(l.Fields(), "|")+"\n"); err != nil {
			return fmt.Errorf("fec: escribir línea %s: %w", l.EcritureNum, err)
		}
	}
	return nil
}

// fieldCleaner quita el separador de columnas y los saltos de línea de los campos libres.
var fieldCleaner = strings.NewReplacer("|", "", "\r\n", " ", "\r", " ", "\n", " ")

// CleanField deja un texto apto para una columna FEC: sin '|' ni saltos de línea.
func CleanField(s string) string {
	return strings.TrimSpace(fieldCleaner.Replace(s))
}

// Fields devuelve los 18 campos de la línea ya formateados, en el orden de Header.
func (l Line) Fields() []string {
	return []string{
		CleanField(l.JournalCode), CleanField(l.JournalLib), CleanField(l.EcritureNum), l.EcritureDate,
		CleanField(l.CompteNum), CleanField(l.CompteLib), CleanField(l.CompAuxNum), CleanField(l.CompAuxLib),
		CleanField(l.PieceRef), l.PieceDate, CleanField(l.EcritureLib),
		FormatAmount(l.Debit), FormatAmount(l.Credit),
		CleanField(l.EcritureLet), l.DateLet, l.ValidDate,
		FormatAmount(l.MontantDevise), l.Idevise,
	}
}

// FormatAmount: 2 decimales, coma decimal, sin signo (el sentido lo da la columna).
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.Abs().StringFixed(2), ".", ",", 1)
}

// FileName nombre legal del fichero: SIREN (9 primeros dígitos del SIRET) + "FEC" + fecha de cierre.
func FileName(siret string, end time.Time) string {
	return SIREN(siret) + "FEC" + end.Format(DateLayout) + ".txt"
}

// FileName del export.
func (e Export) FileName() string {
	return FileName(e.SIRET, e.End)
}

// SIREN extrae los 9 primeros dígitos del SIRET (ignora espacios).
func SIREN(siret string) string {
	var b strings.Builder
	for _, r := range siret {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 9 {
				break
			}
		}
	}
	return b.String()
}

func debit(base Line, acc Account, auxNum, auxLib, label string, amount decimal.Decimal) Line {
	l := base
	l.CompteNum, l.CompteLib = acc.Number, acc.Label
	l.CompAuxNum, l.CompAuxLib = auxNum, auxLib
	l.EcritureLib = label
	l.Debit, l.Credit = amount, decimal.Zero
	l.MontantDevise = amount
	return l
}

func credit(base Line, acc Account, auxNum, auxLib, label string, amount decimal.Decimal) Line {
	l := debit(base, acc, auxNum, auxLib, label, amount)
	l.Debit, l.Credit = decimal.Zero, amount
	return l
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
