package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura paciente.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice factura paciente (dental_invoices).
type Invoice struct {
	ID             string
	LaboratoryID   string
	PatientID      string
	PatientName    string // resuelto en las consultas con JOIN
	Number         string
	Date           time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	AmountPaid     decimal.Decimal
	CPAMAmount     decimal.Decimal
	MutuelleAmount decimal.Decimal
	PatientAmount  decimal.Decimal
	Status         string
	Signature      Signature
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Accountable indica si la factura tiene efecto contable (no borrador ni anulada).
func (i *Invoice) Accountable() bool {
	return i.Status != InvoiceStatusDraft && i.Status != InvoiceStatusCancelled
}
