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

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo persistencia de audit_log (usable con pool o tx). La tabla solo admite INSERT.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

const auditSelect = `
	SELECT id, laboratory_id, sequence_number, entity_type, entity_id, operation,
		details, user_id, previous_hash, hash_sha256, created_at
	FROM audit_log`

// Last toma el advisory lock de la cadena del laboratorio y devuelve su última entrada.
// Con tx el lock dura hasta el commit; con pool se libera al terminar la sentencia y el
// UNIQUE(laboratory_id, sequence_number) resuelve la carrera.
func (r *AuditLogRepo) Last(ctx context.Context, laboratoryID string) (*entity.AuditEntry, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "audit_log:"+laboratoryID); err != nil {
		return nil, fmt.Errorf("lock audit chain: %w", err)
	}
	e, err := scanAuditEntry(r.q.QueryRow(ctx, auditSelect+`
		WHERE laboratory_id = $1
		ORDER BY sequence_number DESC
		LIMIT 1`, laboratoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last audit entry: %w", err)
	}
	return e, nil
}

// Append inserta la entrada; una secuencia ya usada es ErrConflict.
func (r *AuditLogRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, laboratory_id, sequence_number, entity_type, entity_id, operation,
			details, user_id, previous_hash, hash_sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.LaboratoryID, e.SequenceNumber, e.EntityType, e.EntityID, e.Operation,
		e.Details, e.UserID, e.PreviousHash, e.HashSHA256, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: secuencia %d ya usada", domain.ErrConflict, e.SequenceNumber)
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListChain entradas del laboratorio en orden de secuencia, como máximo limit.
func (r *AuditLogRepo) ListChain(ctx context.Context, laboratoryID string, limit int) ([]*entity.AuditEntry, error) {
	return r.list(ctx, auditSelect+`
		WHERE laboratory_id = $1
		ORDER BY sequence_number ASC
		LIMIT $2`, laboratoryID, limit)
}

// Recent últimas entradas; entityType vacío no filtra.
func (r *AuditLogRepo) Recent(ctx context.Context, laboratoryID, entityType string, limit int) ([]*entity.AuditEntry, error) {
	return r.list(ctx, auditSelect+`
		WHERE laboratory_id = $1 AND ($2 = '' OR entity_type = $2)
		ORDER BY sequence_number DESC
		LIMIT $3`, laboratoryID, entityType, limit)
}

func (r *AuditLogRepo) list(ctx context.Context, query string, args ...any) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanAuditEntry(row pgx.Row) (*entity.AuditEntry, error) {
	var e entity.AuditEntry
	err := row.Scan(
		&e.ID, &e.LaboratoryID, &e.SequenceNumber, &e.EntityType, &e.EntityID, &e.Operation,
		&e.Details, &e.UserID, &e.PreviousHash, &e.HashSHA256, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
