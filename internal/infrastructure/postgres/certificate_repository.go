package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo persistencia de digital_certificates (usable con pool o tx).
type CertificateRepo struct {
	q Querier
}

// NewCertificateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCertificateRepository(q Querier) *CertificateRepo {
	return &CertificateRepo{q: q}
}

// Create inserta el certificado. El UNIQUE(laboratory_id) convierte una segunda emisión en ErrAlreadyExists.
func (r *CertificateRepo) Create(ctx context.Context, c *entity.Certificate) error {
	query := `
		INSERT INTO digital_certificates (id, laboratory_id, certificate_type, public_key, private_key, algorithm,
			serial_number, subject, issuer, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.LaboratoryID, c.Type, c.PublicKey, c.PrivateKey, c.Algorithm,
		c.SerialNumber, c.Subject, c.Issuer, c.ValidFrom, c.ValidUntil, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// GetByLaboratoryID devuelve el certificado del laboratorio; (nil, nil) si no tiene.
func (r *CertificateRepo) GetByLaboratoryID(ctx context.Context, laboratoryID string) (*entity.Certificate, error) {
	query := `
		SELECT id, laboratory_id, certificate_type, public_key, private_key, algorithm,
			serial_number, subject, issuer, valid_from, valid_until, created_at
		FROM digital_certificates WHERE laboratory_id = $1`
	var c entity.Certificate
	err := r.q.QueryRow(ctx, query, laboratoryID).Scan(
		&c.ID, &c.LaboratoryID, &c.Type, &c.PublicKey, &c.PrivateKey, &c.Algorithm,
		&c.SerialNumber, &c.Subject, &c.Issuer, &c.ValidFrom, &c.ValidUntil, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificate by laboratory: %w", err)
	}
	return &c, nil
}
