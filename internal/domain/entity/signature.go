package entity

import "time"

// Tipos de documento firmable.
const (
	DocumentInvoice    = "invoice"
	DocumentCreditNote = "credit_note"
)

// ValidDocumentType indica si el tipo de documento es firmable.
func ValidDocumentType(t string) bool {
	return t == DocumentInvoice || t == DocumentCreditNote
}

// Signature triple firma/hash/fecha guardado en el documento. Una firma nueva
// sobrescribe la anterior.
type Signature struct {
	DigitalSignature   string // base64
	HashSHA256         string
	SignatureTimestamp *time.Time
}

// Signed indica si el documento tiene firma.
func (s Signature) Signed() bool {
	return s.DigitalSignature != "" && s.SignatureTimestamp != nil
}

// SignableDocument vista común de factura y avoir para el firmante.
type SignableDocument struct {
	Type         string
	ID           string
	LaboratoryID string
	Number       string
	Signature    Signature
}
