package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var _ repository.FiscalPeriodRepository = (*FiscalPeriodRepo)(nil)

// FiscalPeriodRepo persistencia de fiscal_periods (usable con pool o tx).
type FiscalPeriodRepo struct {
	q Querier
}

// NewFiscalPeriodRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalPeriodRepository(q Querier) *FiscalPeriodRepo {
	return &FiscalPeriodRepo{q: q}
}

const periodSelect = `
	SELECT id, laboratory_id, period_type, period_start, period_end, status,
		invoices_count, total_revenue, total_tax, credit_notes_count, credit_notes_total,
		net_revenue, net_tax, records_count, seal_hash, closed_at, closed_by, created_at
	FROM fiscal_periods`

// Create inserta un periodo abierto. El UNIQUE(laboratory_id, period_type, period_start)
// convierte un duplicado en ErrAlreadyExists.
func (r *FiscalPeriodRepo) Create(ctx context.Context, p *entity.FiscalPeriod) error {
	query := `
		INSERT INTO fiscal_periods (id, laboratory_id, period_type, period_start, period_end, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.LaboratoryID, p.PeriodType, p.PeriodStart, p.PeriodEnd, p.Status, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert fiscal period: %w", err)
	}
	return nil
}

// GetByID obtiene un periodo; (nil, nil) si no existe.
func (r *FiscalPeriodRepo) GetByID(ctx context.Context, id string) (*entity.FiscalPeriod, error) {
	p, err := scanPeriod(r.q.QueryRow(ctx, periodSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal period by id: %w", err)
	}
	return p, nil
}

// ListByLaboratory periodos del laboratorio, más recientes primero.
func (r *FiscalPeriodRepo) ListByLaboratory(ctx context.Context, laboratoryID string) ([]*entity.FiscalPeriod, error) {
	rows, err := r.q.Query(ctx, periodSelect+`
		WHERE laboratory_id = $1
		ORDER BY period_start DESC, period_end ASC`, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("list fiscal periods: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal period: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Close guarda cifras y sello. El WHERE status = 'open' hace que de dos cierres
// concurrentes solo uno actualice la fila.
func (r *FiscalPeriodRepo) Close(ctx context.Context, p *entity.FiscalPeriod) error {
	query := `
		UPDATE fiscal_periods
		SET status = $2, invoices_count = $3, total_revenue = $4, total_tax = $5,
			credit_notes_count = $6, credit_notes_total = $7, net_revenue = $8, net_tax = $9,
			records_count = $10, seal_hash = $11, closed_at = $12, closed_by = $13
		WHERE id = $1 AND status = 'open'`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Status, p.InvoicesCount, p.TotalRevenue, p.TotalTax,
		p.CreditNotesCount, p.CreditNotesTotal, p.NetRevenue, p.NetTax,
		p.RecordsCount, p.SealHash, p.ClosedAt, nullIfEmpty(p.ClosedBy),
	)
	if err != nil {
		return fmt.Errorf("close fiscal period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodClosed
	}
	return nil
}

func scanPeriod(row pgx.Row) (*entity.FiscalPeriod, error) {
	var (
		p              entity.FiscalPeriod
		seal, closedBy pgtype.Text
		closedAt       pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID, &p.LaboratoryID, &p.PeriodType, &p.PeriodStart, &p.PeriodEnd, &p.Status,
		&p.InvoicesCount, &p.TotalRevenue, &p.TotalTax, &p.CreditNotesCount, &p.CreditNotesTotal,
		&p.NetRevenue, &p.NetTax, &p.RecordsCount, &seal, &closedAt, &closedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.SealHash = textValue(seal)
	p.ClosedBy = textValue(closedBy)
	p.ClosedAt = timePtr(closedAt)
	return &p, nil
}
