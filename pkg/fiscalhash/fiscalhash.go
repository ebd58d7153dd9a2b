// Package fiscalhash calcula la huella canónica (contrato v1) de un documento fiscal.
//
// La cadena canónica es:
//
//	v1|<tipo>|<número>|<AAAA-MM-DD>|<total>|<base>|<impuesto>|<SIRET emisor>|<id paciente>
//
// con importes a 2 decimales y punto decimal. El hash es SHA-256 en hexadecimal minúscula.
// Cualquier cambio del formato exige una versión nueva: los hashes ya firmados no se recalculan.
package fiscalhash

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Version prefijo del contrato actual.
const Version = "v1"

// Tipos de documento soportados.
const (
	TypeInvoice    = "invoice"
	TypeCreditNote = "credit_note"
)

// ErrInvalidDocument faltan campos que forman parte de la huella.
var ErrInvalidDocument = errors.New("fiscalhash: documento incompleto")

// Document campos del documento que entran en la huella.
type Document struct {
	Type        string
	Number      string
	Date        time.Time
	Total       decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	IssuerSIRET string
	PatientID   string
}

// Canonical construye la cadena canónica v1.
func Canonical(d Document) (string, error) {
	if d.Type != TypeInvoice && d.Type != TypeCreditNote {
		return "", ErrInvalidDocument
	}
	if d.Number == "" || d.Date.IsZero() {
		return "", ErrInvalidDocument
	}
	// '|' es separador: se elimina de los campos libres para que la cadena sea inyectiva
	clean := func(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), "|", "") }
	return strings.Join([]string{
		Version,
		d.Type,
		clean(d.Number),
		d.Date.Format("2006-01-02"),
		d.Total.StringFixed(2),
		d.Subtotal.StringFixed(2),
		d.TaxAmount.StringFixed(2),
		clean(d.IssuerSIRET),
		clean(d.PatientID),
	}, "|"), nil
}

// Sum devuelve el SHA-256 hex de la cadena canónica.
func Sum(d Document) (string, error) {
	c, err := Canonical(d)
	if err != nil {
		return "", err
	}
	return digest(c), nil
}
