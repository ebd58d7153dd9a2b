package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de avoir.
const (
	CreditTypeCorrection   = "correction"
	CreditTypeCancellation = "cancellation"
	CreditTypeRefund       = "refund"
)

// CreditNote avoir emitido sobre una factura previa (dental_credit_notes).
type CreditNote struct {
	ID             string
	LaboratoryID   string
	InvoiceID      string
	InvoiceNumber  string
	InvoiceDate    time.Time
	PatientID      string
	PatientName    string
	Number         string
	Date           time.Time
	CreditType     string
	Reason         string
	Subtotal       decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	CPAMAmount     decimal.Decimal
	MutuelleAmount decimal.Decimal
	PatientAmount  decimal.Decimal
	Notes          string
	Items          []CreditNoteItem
	Signature      Signature
	CreatedAt      time.Time
}

// CreditNoteItem línea de acto acreditado.
type CreditNoteItem struct {
	ID           string
	CreditNoteID string
	Description  string
	CCAMCode     string
	ToothNumber  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	CPAMAmount   decimal.Decimal
	Total        decimal.Decimal
}
