package repository

import (
	"context"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// CertificateRepository puerto de persistencia de certificados.
type CertificateRepository interface {
	// Create inserta el certificado; si el laboratorio ya tiene uno devuelve domain.ErrAlreadyExists.
	Create(ctx context.Context, cert *entity.Certificate) error
	// GetByLaboratoryID devuelve (nil, nil) si el laboratorio no tiene certificado.
	GetByLaboratoryID(ctx context.Context, laboratoryID string) (*entity.Certificate, error)
}
