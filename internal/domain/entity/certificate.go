package entity

import "time"

// Tipos de certificado.
const CertificateTypeSelfSigned = "self_signed"

// Certificate certificado de firma de un laboratorio (uno por laboratorio, inmutable).
// PrivateKey contiene la llave PKCS#8 cifrada por el keyvault, nunca en claro.
type Certificate struct {
	ID           string
	LaboratoryID string
	Type         string
	PublicKey    string // SPKI base64
	PrivateKey   string // sobre cifrado (keyvault)
	Algorithm    string // p. ej. RSA-4096
	SerialNumber string
	Subject      string
	Issuer       string
	ValidFrom    time.Time
	ValidUntil   time.Time
	CreatedAt    time.Time
}

// ValidAt indica si el certificado está dentro de su ventana de validez.
func (c *Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.ValidFrom) && t.Before(c.ValidUntil)
}
