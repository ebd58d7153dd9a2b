package signing

import (
	"context"
	"fmt"

	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fiscalhash"
)

var _ HashCalculator = (*NativeHashCalculator)(nil)

// NativeHashCalculator calcula la huella v1 en Go leyendo el estado actual del documento.
type NativeHashCalculator struct {
	invoiceRepo    repository.InvoiceRepository
	creditNoteRepo repository.CreditNoteRepository
	labRepo        repository.LaboratoryRepository
}

// NewNativeHashCalculator construye el calculador.
func NewNativeHashCalculator(
	invoiceRepo repository.InvoiceRepository,
	creditNoteRepo repository.CreditNoteRepository,
	labRepo repository.LaboratoryRepository,
) *NativeHashCalculator {
	return &NativeHashCalculator{invoiceRepo: invoiceRepo, creditNoteRepo: creditNoteRepo, labRepo: labRepo}
}

// DocumentHash devuelve el SHA-256 hex de la cadena canónica del documento.
func (c *NativeHashCalculator) DocumentHash(ctx context.Context, docType, id string) (string, error) {
	var (
		doc   fiscalhash.Document
		labID string
	)
	switch docType {
	case entity.DocumentInvoice:
		inv, err := c.invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if inv == nil {
			return "", domain.ErrNotFound
		}
		labID = inv.LaboratoryID
		doc = fiscalhash.Document{
			Type: fiscalhash.TypeInvoice, Number: inv.Number, Date: inv.Date,
			Total: inv.Total, Subtotal: inv.Subtotal, TaxAmount: inv.TaxAmount,
			PatientID: inv.PatientID,
		}
	case entity.DocumentCreditNote:
		cn, err := c.creditNoteRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if cn == nil {
			return "", domain.ErrNotFound
		}
		labID = cn.LaboratoryID
		doc = fiscalhash.Document{
			Type: fiscalhash.TypeCreditNote, Number: cn.Number, Date: cn.Date,
			Total: cn.Total, Subtotal: cn.Subtotal, TaxAmount: cn.TaxAmount,
			PatientID: cn.PatientID,
		}
	default:
		return "", fmt.Errorf("tipo de documento %q no soportado", docType)
	}

	lab, err := c.labRepo.GetByID(ctx, labID)
	if err != nil {
		return "", err
	}
	if lab == nil {
		return "", domain.ErrProfileNotFound
	}
	doc.IssuerSIRET = lab.SIRET
	return fiscalhash.Sum(doc)
}
