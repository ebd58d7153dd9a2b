package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

var _ repository.SignableDocumentRepository = (*SignableDocumentRepo)(nil)

// signableTable tabla y columna de número por tipo de documento firmable.
type signableTable struct {
	table     string
	numberCol string
}

var signableTables = map[string]signableTable{
	entity.DocumentInvoice:    {table: "dental_invoices", numberCol: "invoice_number"},
	entity.DocumentCreditNote: {table: "dental_credit_notes", numberCol: "credit_note_number"},
}

// SignableDocumentRepo campos de firma de facturas y avoirs.
type SignableDocumentRepo struct {
	q Querier
}

// NewSignableDocumentRepository construye el adaptador.
func NewSignableDocumentRepository(q Querier) *SignableDocumentRepo {
	return &SignableDocumentRepo{q: q}
}

// GetSignable devuelve la vista firmable del documento; (nil, nil) si no existe.
func (r *SignableDocumentRepo) GetSignable(ctx context.Context, docType, id string) (*entity.SignableDocument, error) {
	t, ok := signableTables[docType]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`
		SELECT id, laboratory_id, %s, digital_signature, hash_sha256, signature_timestamp
		FROM %s WHERE id = $1`, t.numberCol, t.table)
	var (
		doc       = entity.SignableDocument{Type: docType}
		sig, hash pgtype.Text
		signedAt  pgtype.Timestamptz
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&doc.ID, &doc.LaboratoryID, &doc.Number, &sig, &hash, &signedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signable %s: %w", docType, err)
	}
	doc.Signature = entity.Signature{
		DigitalSignature:   textValue(sig),
		HashSHA256:         textValue(hash),
		SignatureTimestamp: timePtr(signedAt),
	}
	return &doc, nil
}

// UpdateSignature escribe firma, hash y fecha con compare-and-set sobre signature_timestamp.
func (r *SignableDocumentRepo) UpdateSignature(ctx context.Context, docType, id string, sig entity.Signature, prev *time.Time) error {
	t, ok := signableTables[docType]
	if !ok {
		return domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`
		UPDATE %s SET digital_signature = $2, hash_sha256 = $3, signature_timestamp = $4
		WHERE id = $1 AND signature_timestamp IS NOT DISTINCT FROM $5`, t.table)
	tag, err := r.q.Exec(ctx, query, id, sig.DigitalSignature, sig.HashSHA256, sig.SignatureTimestamp, prev)
	if err != nil {
		return fmt.Errorf("update signature %s: %w", docType, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
