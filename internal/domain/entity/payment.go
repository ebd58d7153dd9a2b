package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago.
const (
	PaymentCash     = "cash"
	PaymentCheck    = "check"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCPAM     = "cpam"
	PaymentMutuelle = "mutuelle"
)

// Payment cobro asociado a una factura (dental_payments).
type Payment struct {
	ID            string
	LaboratoryID  string
	InvoiceID     string
	InvoiceNumber string
	PatientID     string
	PatientName   string
	Date          time.Time
	Amount        decimal.Decimal
	Method        string
	Source        string // patient, cpam, mutuelle
	Reference     string
	CreatedAt     time.Time
}
