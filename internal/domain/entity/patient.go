package entity

import (
	"strings"
	"time"
)

// Patient paciente de la consulta.
type Patient struct {
	ID             string
	LaboratoryID   string
	FirstName      string
	LastName       string
	Address        string
	SecurityNumber string // número de seguridad social (NIR)
	CreatedAt      time.Time
}

// FullName "Nombre Apellido".
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
