package dto

import "time"

// CreatePeriodsRequest entrada de POST /api/fiscal/periods.
type CreatePeriodsRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=9999"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// FiscalPeriodView periodo fiscal con sus cifras de cierre.
type FiscalPeriodView struct {
	ID               string     `json:"id"`
	PeriodType       string     `json:"period_type"`
	PeriodStart      string     `json:"period_start"` // AAAA-MM-DD
	PeriodEnd        string     `json:"period_end"`
	Status           string     `json:"status"`
	InvoicesCount    int        `json:"invoices_count"`
	TotalRevenue     string     `json:"total_revenue"`
	TotalTax         string     `json:"total_tax"`
	CreditNotesCount int        `json:"credit_notes_count"`
	CreditNotesTotal string     `json:"credit_notes_total"`
	NetRevenue       string     `json:"net_revenue"`
	NetTax           string     `json:"net_tax"`
	RecordsCount     int        `json:"records_count"`
	SealHash         string     `json:"seal_hash,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
}

// PeriodSealResult salida de POST /api/fiscal/periods/{id}/seal.
type PeriodSealResult struct {
	PeriodID        string    `json:"period_id"`
	CombinedHash    string    `json:"combined_hash"`
	RecordsCount    int       `json:"records_count"`
	UnsignedRecords int       `json:"unsigned_records"`
	ClosedAt        time.Time `json:"closed_at"`
}

// PeriodSealCheck salida de GET /api/fiscal/periods/{id}/verify.
type PeriodSealCheck struct {
	PeriodID       string `json:"period_id"`
	Valid          bool   `json:"valid"`
	StoredHash     string `json:"stored_hash"`
	CalculatedHash string `json:"calculated_hash"`
	RecordsCount   int    `json:"records_count"`
}

// AuditEntryView entrada del registro de auditoría.
type AuditEntryView struct {
	SequenceNumber int64     `json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	Operation      string    `json:"operation"`
	Details        string    `json:"details,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	PreviousHash   string    `json:"previous_hash,omitempty"`
	HashSHA256     string    `json:"hash_sha256"`
}

// AuditCheck resultado de verificar un eslabón.
type AuditCheck struct {
	SequenceNumber int64     `json:"sequence_number"`
	IsValid        bool      `json:"is_valid"`
	CalculatedHash string    `json:"calculated_hash"`
	StoredHash     string    `json:"stored_hash"`
	EntityType     string    `json:"entity_type"`
	Operation      string    `json:"operation"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditChainResult salida de GET /api/audit/verify.
type AuditChainResult struct {
	Valid                bool         `json:"valid"`
	Checked              int          `json:"checked"`
	FirstInvalidSequence int64        `json:"first_invalid_sequence,omitempty"`
	Entries              []AuditCheck `json:"entries"`
}
