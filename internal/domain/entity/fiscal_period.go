package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de periodo fiscal.
const (
	PeriodTypeMonth   = "month"
	PeriodTypeQuarter = "quarter"
	PeriodTypeYear    = "year"
)

// Estados de un periodo fiscal.
const (
	PeriodStatusOpen   = "open"
	PeriodStatusClosed = "closed"
)

// FiscalPeriod periodo contable de un laboratorio (fiscal_periods). Al cerrarse
// guarda las cifras y el sello SHA-256 de los documentos que contiene; un periodo
// cerrado no se modifica.
type FiscalPeriod struct {
	ID               string
	LaboratoryID     string
	PeriodType       string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Status           string
	InvoicesCount    int
	TotalRevenue     decimal.Decimal
	TotalTax         decimal.Decimal
	CreditNotesCount int
	CreditNotesTotal decimal.Decimal
	NetRevenue       decimal.Decimal
	NetTax           decimal.Decimal
	RecordsCount     int
	SealHash         string
	ClosedAt         *time.Time
	ClosedBy         string
	CreatedAt        time.Time
}

// Closed indica si el periodo ya está sellado.
func (p *FiscalPeriod) Closed() bool {
	return p.Status == PeriodStatusClosed
}
