package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo lectura de dental_invoices (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceSelect = `
	SELECT i.id, i.laboratory_id, i.patient_id, p.first_name || ' ' || p.last_name,
		i.invoice_number, i.invoice_date, i.subtotal, i.tax_amount, i.total, i.amount_paid,
		i.cpam_part, i.mutuelle_part, i.patient_part, i.status,
		i.digital_signature, i.hash_sha256, i.signature_timestamp, i.created_at, i.updated_at
	FROM dental_invoices i
	JOIN patients p ON p.id = i.patient_id`

// GetByID obtiene una factura; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}
	return inv, nil
}

// ListByPeriod facturas del laboratorio con fecha en [start, end], ordenadas por fecha y número.
func (r *InvoiceRepo) ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+`
		WHERE i.laboratory_id = $1 AND i.invoice_date BETWEEN $2 AND $3
		ORDER BY i.invoice_date, i.invoice_number`, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv       entity.Invoice
		sig, hash pgtype.Text
		signedAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&inv.ID, &inv.LaboratoryID, &inv.PatientID, &inv.PatientName,
		&inv.Number, &inv.Date, &inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.AmountPaid,
		&inv.CPAMAmount, &inv.MutuelleAmount, &inv.PatientAmount, &inv.Status,
		&sig, &hash, &signedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Signature = entity.Signature{
		DigitalSignature:   textValue(sig),
		HashSHA256:         textValue(hash),
		SignatureTimestamp: timePtr(signedAt),
	}
	return &inv, nil
}
