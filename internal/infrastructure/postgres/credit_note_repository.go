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

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo lectura de dental_credit_notes y sus líneas.
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

// El paciente del avoir es el de la factura de origen.
const creditNoteSelect = `
	SELECT c.id, c.laboratory_id, c.invoice_id, i.invoice_number, i.invoice_date,
		i.patient_id, p.first_name || ' ' || p.last_name,
		c.credit_note_number, c.credit_note_date, c.credit_type, c.reason,
		c.subtotal, c.tax_rate, c.tax_amount, c.total, c.cpam_part, c.mutuelle_part, c.patient_part, c.notes,
		c.digital_signature, c.hash_sha256, c.signature_timestamp, c.created_at
	FROM dental_credit_notes c
	JOIN dental_invoices i ON i.id = c.invoice_id
	JOIN patients p ON p.id = i.patient_id`

// GetByID obtiene un avoir con sus líneas; (nil, nil) si no existe.
func (r *CreditNoteRepo) GetByID(ctx context.Context, id string) (*entity.CreditNote, error) {
	cn, err := scanCreditNote(r.q.QueryRow(ctx, creditNoteSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit note by id: %w", err)
	}
	items, err := r.items(ctx, cn.ID)
	if err != nil {
		return nil, err
	}
	cn.Items = items
	return cn, nil
}

// ListByPeriod avoirs del laboratorio con fecha en [start, end] (sin líneas).
func (r *CreditNoteRepo) ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.CreditNote, error) {
	rows, err := r.q.Query(ctx, creditNoteSelect+`
		WHERE c.laboratory_id = $1 AND c.credit_note_date BETWEEN $2 AND $3
		ORDER BY c.credit_note_date, c.credit_note_number`, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditNote
	for rows.Next() {
		cn, err := scanCreditNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		list = append(list, cn)
	}
	return list, rows.Err()
}

func (r *CreditNoteRepo) items(ctx context.Context, creditNoteID string) ([]entity.CreditNoteItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, credit_note_id, description, ccam_code, tooth_number, quantity, unit_price, cpam_reimbursement, total
		FROM dental_credit_note_items WHERE credit_note_id = $1 ORDER BY position, id`, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("list credit note items: %w", err)
	}
	defer rows.Close()
	var list []entity.CreditNoteItem
	for rows.Next() {
		var (
			it          entity.CreditNoteItem
			ccam, tooth pgtype.Text
		)
		if err := rows.Scan(&it.ID, &it.CreditNoteID, &it.Description, &ccam, &tooth,
			&it.Quantity, &it.UnitPrice, &it.CPAMAmount, &it.Total); err != nil {
			return nil, fmt.Errorf("scan credit note item: %w", err)
		}
		it.CCAMCode, it.ToothNumber = textValue(ccam), textValue(tooth)
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanCreditNote(row pgx.Row) (*entity.CreditNote, error) {
	var (
		cn               entity.CreditNote
		notes, sig, hash pgtype.Text
		signedAt         pgtype.Timestamptz
	)
	err := row.Scan(
		&cn.ID, &cn.LaboratoryID, &cn.InvoiceID, &cn.InvoiceNumber, &cn.InvoiceDate,
		&cn.PatientID, &cn.PatientName,
		&cn.Number, &cn.Date, &cn.CreditType, &cn.Reason,
		&cn.Subtotal, &cn.TaxRate, &cn.TaxAmount, &cn.Total, &cn.CPAMAmount, &cn.MutuelleAmount, &cn.PatientAmount, &notes,
		&sig, &hash, &signedAt, &cn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	cn.Notes = textValue(notes)
	cn.Signature = entity.Signature{
		DigitalSignature:   textValue(sig),
		HashSHA256:         textValue(hash),
		SignatureTimestamp: timePtr(signedAt),
	}
	return &cn, nil
}
