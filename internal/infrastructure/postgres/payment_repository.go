package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo lectura de dental_payments.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// ListByPeriod cobros del laboratorio con fecha en [start, end], con número de factura y paciente resueltos.
func (r *PaymentRepo) ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT pay.id, pay.laboratory_id, pay.invoice_id, i.invoice_number, i.patient_id,
			p.first_name || ' ' || p.last_name,
			pay.payment_date, pay.amount, pay.payment_method, pay.payment_source, pay.reference, pay.created_at
		FROM dental_payments pay
		JOIN dental_invoices i ON i.id = pay.invoice_id
		JOIN patients p ON p.id = i.patient_id
		WHERE pay.laboratory_id = $1 AND pay.payment_date BETWEEN $2 AND $3
		ORDER BY pay.payment_date, pay.id`, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var (
			p   entity.Payment
			ref pgtype.Text
		)
		if err := rows.Scan(&p.ID, &p.LaboratoryID, &p.InvoiceID, &p.InvoiceNumber, &p.PatientID,
			&p.PatientName, &p.Date, &p.Amount, &p.Method, &p.Source, &ref, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Reference = textValue(ref)
		list = append(list, &p)
	}
	return list, rows.Err()
}
