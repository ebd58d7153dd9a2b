package fiscal

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// Tipos de periodo de un rapport fiscal.
const (
	PeriodMonth   = entity.PeriodTypeMonth
	PeriodQuarter = entity.PeriodTypeQuarter
	PeriodYear    = entity.PeriodTypeYear
)

// TopPatientsLimit pacientes listados en el rapport.
const TopPatientsLimit = 5

var hundred = decimal.NewFromInt(100)

// Practice identidad de la consulta que encabeza los PDF.
type Practice struct {
	Name    string
	SIRET   string
	RPPS    string
	Address string
	Phone   string
	Email   string
}

// PracticeFromLaboratory proyecta el laboratorio al encabezado de los documentos.
func PracticeFromLaboratory(lab *entity.Laboratory) Practice {
	return Practice{
		Name:    lab.Name,
		SIRET:   lab.SIRET,
		RPPS:    lab.RPPS,
		Address: lab.FullAddress(),
		Phone:   lab.Phone,
		Email:   lab.Email,
	}
}

// StatusBreakdown número de facturas por estado.
type StatusBreakdown struct {
	Draft     int
	Sent      int
	Partial   int
	Paid      int
	Cancelled int
}

// PatientAmount facturación acumulada de un paciente.
type PatientAmount struct {
	Name   string
	Amount decimal.Decimal
}

// FiscalPeriodReport cifras de un periodo fiscal (mes, trimestre o año).
// TotalRevenue/TotalTax son brutos de facturas; NetRevenue/NetTax descuentan los avoirs.
type FiscalPeriodReport struct {
	Practice      Practice
	PeriodType    string
	Start         time.Time
	End           time.Time
	InvoicesCount int
	PaymentsCount int
	TotalRevenue  decimal.Decimal
	TotalTax      decimal.Decimal
	NetRevenue    decimal.Decimal
	NetTax        decimal.Decimal
	TotalPaid     decimal.Decimal
	Status        StatusBreakdown
	TopPatients   []PatientAmount
	GeneratedAt   time.Time
}

// NetTotal chiffre d'affaires TTC neto.
func (r FiscalPeriodReport) NetTotal() decimal.Decimal {
	return r.NetRevenue.Add(r.NetTax)
}

// Days duración del periodo en días (redondeo hacia arriba, mínimo 1).
func (r FiscalPeriodReport) Days() int {
	d := int(math.Ceil(r.End.Sub(r.Start).Hours() / 24))
	if d < 1 {
		return 1
	}
	return d
}

// AveragePerInvoice TTC medio por factura; cero si no hay facturas.
func (r FiscalPeriodReport) AveragePerInvoice() decimal.Decimal {
	if r.InvoicesCount == 0 {
		return decimal.Zero
	}
	return r.NetTotal().Div(decimal.NewFromInt(int64(r.InvoicesCount)))
}

// CollectionRate porcentaje cobrado sobre el TTC neto; cero si no hay facturación.
func (r FiscalPeriodReport) CollectionRate() decimal.Decimal {
	total := r.NetTotal()
	if !total.IsPositive() {
		return decimal.Zero
	}
	return r.TotalPaid.Div(total).Mul(hundred)
}

// DailyRevenue TTC neto medio por día del periodo.
func (r FiscalPeriodReport) DailyRevenue() decimal.Decimal {
	return r.NetTotal().Div(decimal.NewFromInt(int64(r.Days())))
}

// QuarterVAT base y TVA de un trimestre.
type QuarterVAT struct {
	Quarter int
	Revenue decimal.Decimal
	VAT     decimal.Decimal
}

// TTC base + TVA.
func (q QuarterVAT) TTC() decimal.Decimal { return q.Revenue.Add(q.VAT) }

// AnnualVATReport récapitulatif TVA anual por trimestres.
type AnnualVATReport struct {
	Practice    Practice
	Year        int
	Quarters    []QuarterVAT
	GeneratedAt time.Time
}

// Totals suma anual de base y TVA.
func (r AnnualVATReport) Totals() (revenue, vat decimal.Decimal) {
	for _, q := range r.Quarters {
		revenue = revenue.Add(q.Revenue)
		vat = vat.Add(q.VAT)
	}
	return revenue, vat
}

// CreditNoteDocument datos completos para imprimir un avoir.
type CreditNoteDocument struct {
	Practice              Practice
	CreditNote            *entity.CreditNote
	PatientAddress        string
	PatientSecurityNumber string
	CertificateSerial     string // vacío si el laboratorio no tiene certificado
	Hash                  string // huella firmada o, si no hay firma, la calculada
	GeneratedAt           time.Time
}
