package repository

import (
	"context"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// LaboratoryRepository puerto de persistencia de laboratorios.
// Los Get devuelven (nil, nil) cuando el registro no existe.
type LaboratoryRepository interface {
	Create(ctx context.Context, lab *entity.Laboratory) error
	GetByID(ctx context.Context, id string) (*entity.Laboratory, error)
}

// PatientRepository puerto de lectura de pacientes.
type PatientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Patient, error)
}
