package fiscal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

const contentTypeText = "text/plain; charset=utf-8"

// FECUseCase arma el Fichier des Écritures Comptables de un laboratorio para un periodo.
type FECUseCase struct {
	labRepo        repository.LaboratoryRepository
	invoiceRepo    repository.InvoiceRepository
	paymentRepo    repository.PaymentRepository
	creditNoteRepo repository.CreditNoteRepository
	encoders       map[string]FECEncoder
	log            zerolog.Logger
}

// NewFECUseCase construye el caso de uso. encoders asocia un formato ("xml", "xlsx")
// a su serializador; el texto plano siempre está disponible.
func NewFECUseCase(
	labRepo repository.LaboratoryRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	creditNoteRepo repository.CreditNoteRepository,
	encoders map[string]FECEncoder,
	log zerolog.Logger,
) *FECUseCase {
	if encoders == nil {
		encoders = map[string]FECEncoder{}
	}
	return &FECUseCase{
		labRepo:        labRepo,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		encoders:       encoders,
		log:            log,
	}
}

// Export genera el FEC del periodo [start, end]. Si falla la lectura de cualquier
// entidad falla el export completo: no se omiten filas.
func (uc *FECUseCase) Export(ctx context.Context, laboratoryID string, start, end time.Time, format string) (*dto.FECFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = dto.FECFormatTXT
	}
	enc, ok := uc.encoders[format]
	if format != dto.FECFormatTXT && !ok {
		return nil, fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, fmt.Errorf("%w: periodo inválido", domain.ErrInvalidInput)
	}

	exp, err := uc.load(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, err
	}
	lines, err := exp.Lines()
	if err != nil {
		if errors.Is(err, fec.ErrUnbalanced) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return nil, err
	}

	file := &dto.FECFile{FileName: exp.FileName(), Lines: len(lines)}
	if format == dto.FECFormatTXT {
		var buf bytes.Buffer
		if err := fec.Write(&buf, lines); err != nil {
			return nil, err
		}
		file.Content = buf.Bytes()
		file.ContentType = contentTypeText
	} else {
		out, err := enc.Encode(*exp, lines)
		if err != nil {
			return nil, fmt.Errorf("fec %s: %w", format, err)
		}
		file.FileName = strings.TrimSuffix(file.FileName, ".txt") + "." + out.Extension
		file.Content = out.Content
		file.ContentType = out.ContentType
		file.Digest = out.Digest
	}

	uc.log.Info().
		Str("laboratory_id", laboratoryID).
		Str("format", format).
		Str("file", file.FileName).
		Int("lines", file.Lines).
		Msg("FEC generado")
	return file, nil
}

// load lee laboratorio, facturas, cobros y avoirs del periodo y los proyecta al modelo FEC.
func (uc *FECUseCase) load(ctx context.Context, laboratoryID string, start, end time.Time) (*fec.Export, error) {
	lab, err := uc.labRepo.GetByID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer laboratorio: %v", domain.ErrPersistence, err)
	}
	if lab == nil {
		return nil, domain.ErrProfileNotFound
	}
	if fec.SIREN(lab.SIRET) == "" {
		return nil, fmt.Errorf("%w: el laboratorio no tiene SIRET", domain.ErrInvalidInput)
	}

	invoices, err := uc.invoiceRepo.ListByPeriod(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: leer facturas: %v", domain.ErrPersistence, err)
	}
	payments, err := uc.paymentRepo.ListByPeriod(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: leer cobros: %v", domain.ErrPersistence, err)
	}
	creditNotes, err := uc.creditNoteRepo.ListByPeriod(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: leer avoirs: %v", domain.ErrPersistence, err)
	}

	exp := &fec.Export{SIRET: lab.SIRET, Start: start, End: end}
	for _, inv := range invoices {
		exp.Invoices = append(exp.Invoices, toFECInvoice(inv))
	}
	for _, p := range payments {
		exp.Payments = append(exp.Payments, toFECPayment(p))
	}
	for _, cn := range creditNotes {
		exp.CreditNotes = append(exp.CreditNotes, toFECCreditNote(cn))
	}
	return exp, nil
}

func toFECInvoice(inv *entity.Invoice) fec.Invoice {
	return fec.Invoice{
		ID:          inv.ID,
		Number:      inv.Number,
		Date:        inv.Date,
		PatientID:   inv.PatientID,
		PatientName: inv.PatientName,
		Total:       inv.Total,
		Subtotal:    inv.Subtotal,
		TaxAmount:   inv.TaxAmount,
		Status:      inv.Status,
	}
}

func toFECPayment(p *entity.Payment) fec.Payment {
	return fec.Payment{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		Date:          p.Date,
		Amount:        p.Amount,
		Method:        p.Method,
		Source:        p.Source,
		PatientID:     p.PatientID,
		PatientName:   p.PatientName,
	}
}

func toFECCreditNote(cn *entity.CreditNote) fec.CreditNote {
	return fec.CreditNote{
		ID:            cn.ID,
		Number:        cn.Number,
		Date:          cn.Date,
		InvoiceNumber: cn.InvoiceNumber,
		PatientID:     cn.PatientID,
		PatientName:   cn.PatientName,
		Total:         cn.Total,
		Subtotal:      cn.Subtotal,
		TaxAmount:     cn.TaxAmount,
	}
}
