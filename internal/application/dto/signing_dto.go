package dto

import "time"

// CertificateView vista reducida del certificado: nunca incluye la llave privada.
type CertificateView struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	ValidFrom    time.Time `json:"valid_from"`
	ValidUntil   time.Time `json:"valid_until"`
	Algorithm    string    `json:"algorithm"`
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	PublicKey    string    `json:"public_key,omitempty"`
}

// CertificateResponse salida de POST /api/certificates.
type CertificateResponse struct {
	Success     bool            `json:"success"`
	Certificate CertificateView `json:"certificate"`
}

// SignRequest entrada de POST /api/signatures.
type SignRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=invoice credit_note"`
	DocumentID   string `json:"documentId" validate:"required"`
}

// SignatureResult salida de la firma de un documento.
type SignatureResult struct {
	Success           bool   `json:"success"`
	Signature         string `json:"signature"`
	Hash              string `json:"hash"`
	Timestamp         string `json:"timestamp"` // RFC 3339
	CertificateSerial string `json:"certificate_serial"`
}

// VerifyResult salida de POST /api/signatures/verify.
// Stale indica que el documento cambió después de firmarse.
type VerifyResult struct {
	Valid             bool   `json:"valid"`
	Stale             bool   `json:"stale"`
	Signed            bool   `json:"signed"`
	Hash              string `json:"hash"`
	StoredHash        string `json:"stored_hash"`
	CertificateSerial string `json:"certificate_serial"`
}
