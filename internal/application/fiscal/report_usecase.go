package fiscal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fiscalhash"
)

// ReportUseCase agrega las cifras fiscales de un laboratorio y las envía al renderer PDF.
type ReportUseCase struct {
	labRepo        repository.LaboratoryRepository
	patientRepo    repository.PatientRepository
	invoiceRepo    repository.InvoiceRepository
	paymentRepo    repository.PaymentRepository
	creditNoteRepo repository.CreditNoteRepository
	certRepo       repository.CertificateRepository
	renderer       PDFRenderer
	log            zerolog.Logger
	now            func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	labRepo repository.LaboratoryRepository,
	patientRepo repository.PatientRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	creditNoteRepo repository.CreditNoteRepository,
	certRepo repository.CertificateRepository,
	renderer PDFRenderer,
	log zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		labRepo:        labRepo,
		patientRepo:    patientRepo,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		certRepo:       certRepo,
		renderer:       renderer,
		log:            log,
		now:            time.Now,
	}
}

// PeriodReport calcula las cifras del periodo [start, end].
func (uc *ReportUseCase) PeriodReport(ctx context.Context, laboratoryID string, start, end time.Time, periodType string) (*FiscalPeriodReport, error) {
	periodType = strings.ToLower(strings.TrimSpace(periodType))
	switch periodType {
	case "":
		periodType = PeriodMonth
	case PeriodMonth, PeriodQuarter, PeriodYear:
	default:
		return nil, fmt.Errorf("%w: tipo de periodo %q", domain.ErrInvalidInput, periodType)
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, fmt.Errorf("%w: periodo inválido", domain.ErrInvalidInput)
	}

	lab, err := uc.practice(ctx, laboratoryID)
	if err != nil {
		return nil, err
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

	r := summarizePeriod(invoices, payments, creditNotes)
	r.Practice = PracticeFromLaboratory(lab)
	r.PeriodType = periodType
	r.Start, r.End = start, end
	r.GeneratedAt = uc.now()
	return &r, nil
}

// FiscalReportPDF renderiza el rapport fiscal del periodo.
func (uc *ReportUseCase) FiscalReportPDF(ctx context.Context, laboratoryID string, start, end time.Time, periodType string) (*dto.PDFFile, error) {
	r, err := uc.PeriodReport(ctx, laboratoryID, start, end, periodType)
	if err != nil {
		return nil, err
	}
	content, err := uc.renderer.RenderFiscalReport(ctx, *r)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("laboratory_id", laboratoryID).
		Str("period", r.PeriodType).
		Int("invoices", r.InvoicesCount).
		Msg("rapport fiscal generado")
	return &dto.PDFFile{
		FileName: fmt.Sprintf("rapport-fiscal-%s-%s.pdf", start.Format("20060102"), end.Format("20060102")),
		Content:  content,
	}, nil
}

// AnnualVAT agrega base y TVA netas (facturas menos avoirs) por trimestre del año.
func (uc *ReportUseCase) AnnualVAT(ctx context.Context, laboratoryID string, year int) (*AnnualVATReport, error) {
	if year < 2000 || year > 9999 {
		return nil, fmt.Errorf("%w: año %d", domain.ErrInvalidInput, year)
	}
	lab, err := uc.practice(ctx, laboratoryID)
	if err != nil {
		return nil, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	invoices, err := uc.invoiceRepo.ListByPeriod(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: leer facturas: %v", domain.ErrPersistence, err)
	}
	creditNotes, err := uc.creditNoteRepo.ListByPeriod(ctx, laboratoryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: leer avoirs: %v", domain.ErrPersistence, err)
	}

	return &AnnualVATReport{
		Practice:    PracticeFromLaboratory(lab),
		Year:        year,
		Quarters:    quarterlyVAT(invoices, creditNotes),
		GeneratedAt: uc.now(),
	}, nil
}

// AnnualVATPDF renderiza el récapitulatif TVA del año.
func (uc *ReportUseCase) AnnualVATPDF(ctx context.Context, laboratoryID string, year int) (*dto.PDFFile, error) {
	r, err := uc.AnnualVAT(ctx, laboratoryID, year)
	if err != nil {
		return nil, err
	}
	content, err := uc.renderer.RenderAnnualVAT(ctx, *r)
	if err != nil {
		return nil, err
	}
	return &dto.PDFFile{FileName: fmt.Sprintf("tva-%d.pdf", year), Content: content}, nil
}

// CreditNotePDF renderiza un avoir del laboratorio del llamador.
func (uc *ReportUseCase) CreditNotePDF(ctx context.Context, laboratoryID, creditNoteID string) (*dto.PDFFile, error) {
	cn, err := uc.creditNoteRepo.GetByID(ctx, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer avoir: %v", domain.ErrPersistence, err)
	}
	if cn == nil {
		return nil, domain.ErrNotFound
	}
	if cn.LaboratoryID != laboratoryID {
		return nil, domain.ErrForbidden
	}
	lab, err := uc.practice(ctx, laboratoryID)
	if err != nil {
		return nil, err
	}

	doc := CreditNoteDocument{
		Practice:    PracticeFromLaboratory(lab),
		CreditNote:  cn,
		Hash:        cn.Signature.HashSHA256,
		GeneratedAt: uc.now(),
	}
	if cn.PatientID != "" {
		p, err := uc.patientRepo.GetByID(ctx, cn.PatientID)
		if err != nil {
			return nil, fmt.Errorf("%w: leer paciente: %v", domain.ErrPersistence, err)
		}
		if p != nil {
			doc.PatientAddress = p.Address
			doc.PatientSecurityNumber = p.SecurityNumber
		}
	}
	cert, err := uc.certRepo.GetByLaboratoryID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer certificado: %v", domain.ErrPersistence, err)
	}
	if cert != nil {
		doc.CertificateSerial = cert.SerialNumber
	}
	if doc.Hash == "" {
		// avoir sin firmar: se imprime la huella actual
		doc.Hash, err = fiscalhash.Sum(fiscalhash.Document{
			Type: fiscalhash.TypeCreditNote, Number: cn.Number, Date: cn.Date,
			Total: cn.Total, Subtotal: cn.Subtotal, TaxAmount: cn.TaxAmount,
			IssuerSIRET: lab.SIRET, PatientID: cn.PatientID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrHashComputation, err)
		}
	}

	content, err := uc.renderer.RenderCreditNote(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &dto.PDFFile{FileName: "avoir-" + cn.Number + ".pdf", Content: content}, nil
}

func (uc *ReportUseCase) practice(ctx context.Context, laboratoryID string) (*entity.Laboratory, error) {
	lab, err := uc.labRepo.GetByID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer laboratorio: %v", domain.ErrPersistence, err)
	}
	if lab == nil {
		return nil, domain.ErrProfileNotFound
	}
	return lab, nil
}

// summarizePeriod: los importes cuentan solo facturas con efecto contable; el desglose
// por estado cuenta todas.
func summarizePeriod(invoices []*entity.Invoice, payments []*entity.Payment, creditNotes []*entity.CreditNote) FiscalPeriodReport {
	var r FiscalPeriodReport
	byPatient := map[string]decimal.Decimal{}
	for _, inv := range invoices {
		switch inv.Status {
		case entity.InvoiceStatusDraft:
			r.Status.Draft++
		case entity.InvoiceStatusSent:
			r.Status.Sent++
		case entity.InvoiceStatusPartial:
			r.Status.Partial++
		case entity.InvoiceStatusPaid:
			r.Status.Paid++
		case entity.InvoiceStatusCancelled:
			r.Status.Cancelled++
		}
		if !inv.Accountable() {
			continue
		}
		r.InvoicesCount++
		r.TotalRevenue = r.TotalRevenue.Add(inv.Subtotal)
		r.TotalTax = r.TotalTax.Add(inv.TaxAmount)
		byPatient[inv.PatientName] = byPatient[inv.PatientName].Add(inv.Total)
	}

	r.NetRevenue, r.NetTax = r.TotalRevenue, r.TotalTax
	for _, cn := range creditNotes {
		r.NetRevenue = r.NetRevenue.Sub(cn.Subtotal)
		r.NetTax = r.NetTax.Sub(cn.TaxAmount)
	}
	for _, p := range payments {
		r.PaymentsCount++
		r.TotalPaid = r.TotalPaid.Add(p.Amount)
	}

	r.TopPatients = make([]PatientAmount, 0, len(byPatient))
	for name, amount := range byPatient {
		r.TopPatients = append(r.TopPatients, PatientAmount{Name: name, Amount: amount})
	}
	sort.Slice(r.TopPatients, func(i, j int) bool {
		a, b := r.TopPatients[i], r.TopPatients[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Name < b.Name
	})
	if len(r.TopPatients) > TopPatientsLimit {
		r.TopPatients = r.TopPatients[:TopPatientsLimit]
	}
	return r
}

func quarterlyVAT(invoices []*entity.Invoice, creditNotes []*entity.CreditNote) []QuarterVAT {
	quarters := make([]QuarterVAT, 4)
	for i := range quarters {
		quarters[i].Quarter = i + 1
	}
	for _, inv := range invoices {
		if !inv.Accountable() {
			continue
		}
		q := &quarters[quarterOf(inv.Date)-1]
		q.Revenue = q.Revenue.Add(inv.Subtotal)
		q.VAT = q.VAT.Add(inv.TaxAmount)
	}
	for _, cn := range creditNotes {
		q := &quarters[quarterOf(cn.Date)-1]
		q.Revenue = q.Revenue.Sub(cn.Subtotal)
		q.VAT = q.VAT.Sub(cn.TaxAmount)
	}
	return quarters
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
