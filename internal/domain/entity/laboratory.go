package entity

import "time"

// Laboratory consulta o laboratorio dental: emisor de las facturas y dueño del certificado.
type Laboratory struct {
	ID         string
	Name       string
	SIRET      string
	RPPS       string // identificador del profesional de salud
	Address    string
	PostalCode string
	City       string
	Phone      string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullAddress dirección en una sola línea para los encabezados PDF.
func (l *Laboratory) FullAddress() string {
	switch {
	case l.Address == "":
		return joinNonEmpty(" ", l.PostalCode, l.City)
	case l.PostalCode == "" && l.City == "":
		return l.Address
	default:
		return l.Address + ", " + joinNonEmpty(" ", l.PostalCode, l.City)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
