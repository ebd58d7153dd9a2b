package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var (
	_ repository.LaboratoryRepository = (*LaboratoryRepo)(nil)
	_ repository.PatientRepository    = (*PatientRepo)(nil)
)

// LaboratoryRepo implementación de LaboratoryRepository sobre PostgreSQL.
type LaboratoryRepo struct {
	q Querier
}

// NewLaboratoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLaboratoryRepository(q Querier) *LaboratoryRepo {
	return &LaboratoryRepo{q: q}
}

// Create persiste un laboratorio.
func (r *LaboratoryRepo) Create(ctx context.Context, lab *entity.Laboratory) error {
	if lab.ID == "" {
		lab.ID = uuid.New().String()
	}
	query := `
		INSERT INTO laboratories (id, name, siret, rpps, address, postal_code, city, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		lab.ID, lab.Name, nullIfEmpty(lab.SIRET), nullIfEmpty(lab.RPPS), nullIfEmpty(lab.Address),
		nullIfEmpty(lab.PostalCode), nullIfEmpty(lab.City), nullIfEmpty(lab.Phone), nullIfEmpty(lab.Email),
		lab.CreatedAt, lab.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert laboratory: %w", err)
	}
	return nil
}

// GetByID obtiene un laboratorio por ID; (nil, nil) si no existe.
func (r *LaboratoryRepo) GetByID(ctx context.Context, id string) (*entity.Laboratory, error) {
	query := `
		SELECT id, name, siret, rpps, address, postal_code, city, phone, email, created_at, updated_at
		FROM laboratories WHERE id = $1`
	var (
		l                                             entity.Laboratory
		siret, rpps, address, postal, city, tel, mail pgtype.Text
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Name, &siret, &rpps, &address, &postal, &city, &tel, &mail, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get laboratory by id: %w", err)
	}
	l.SIRET, l.RPPS, l.Address = textValue(siret), textValue(rpps), textValue(address)
	l.PostalCode, l.City, l.Phone, l.Email = textValue(postal), textValue(city), textValue(tel), textValue(mail)
	return &l, nil
}

// PatientRepo lectura de pacientes.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador.
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

// GetByID obtiene un paciente; (nil, nil) si no existe.
func (r *PatientRepo) GetByID(ctx context.Context, id string) (*entity.Patient, error) {
	query := `
		SELECT id, laboratory_id, first_name, last_name, address, security_number, created_at
		FROM patients WHERE id = $1`
	var (
		pat              entity.Patient
		address, secuNum pgtype.Text
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&pat.ID, &pat.LaboratoryID, &pat.FirstName, &pat.LastName, &address, &secuNum, &pat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by id: %w", err)
	}
	pat.Address, pat.SecurityNumber = textValue(address), textValue(secuNum)
	return &pat, nil
}
