package entity

import "time"

// Entidades auditadas.
const (
	AuditEntityCertificate  = "certificate"
	AuditEntityInvoice      = DocumentInvoice
	AuditEntityCreditNote   = DocumentCreditNote
	AuditEntityFiscalPeriod = "fiscal_period"
)

// Operaciones auditadas.
const (
	AuditOpCreate = "CREATE"
	AuditOpSign   = "SIGN"
	AuditOpResign = "RESIGN"
	AuditOpSeal   = "SEAL"
)

// AuditEvent hecho a registrar; el registro le asigna secuencia, fecha y hashes.
type AuditEvent struct {
	LaboratoryID string
	UserID       string
	EntityType   string
	EntityID     string
	Operation    string
	Details      string
}

// AuditEntry entrada del registro de auditoría (audit_log). Cada entrada encadena el
// hash de la anterior del mismo laboratorio; el registro solo admite inserciones.
type AuditEntry struct {
	ID             string
	LaboratoryID   string
	SequenceNumber int64
	EntityType     string
	EntityID       string
	Operation      string
	Details        string
	UserID         string
	PreviousHash   string // vacío en la primera entrada
	HashSHA256     string
	CreatedAt      time.Time
}
