package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// InvoiceRepository lectura de facturas paciente.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// ListByPeriod facturas del laboratorio con fecha en [start, end], cualquier estado.
	ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.Invoice, error)
}

// CreditNoteRepository lectura de avoirs (con sus líneas en GetByID).
type CreditNoteRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CreditNote, error)
	ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.CreditNote, error)
}

// PaymentRepository lectura de cobros.
type PaymentRepository interface {
	ListByPeriod(ctx context.Context, laboratoryID string, start, end time.Time) ([]*entity.Payment, error)
}

// SignableDocumentRepository acceso a los campos de firma de facturas y avoirs.
type SignableDocumentRepository interface {
	// GetSignable devuelve (nil, nil) si el documento no existe.
	GetSignable(ctx context.Context, docType, id string) (*entity.SignableDocument, error)
	// UpdateSignature escribe firma, hash y fecha solo si la fecha de firma actual sigue
	// siendo prev (nil = sin firmar). Si otro proceso firmó antes devuelve domain.ErrConflict.
	UpdateSignature(ctx context.Context, docType, id string, sig entity.Signature, prev *time.Time) error
}
