package fiscal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fiscalhash"
)

// PeriodUseCase apertura, cierre sellado y verificación de periodos fiscales.
type PeriodUseCase struct {
	labRepo        repository.LaboratoryRepository
	periodRepo     repository.FiscalPeriodRepository
	invoiceRepo    repository.InvoiceRepository
	creditNoteRepo repository.CreditNoteRepository
	hasher         DocumentHasher
	txRunner       TxRunner
	audit          AuditRecorder
	log            zerolog.Logger
	now            func() time.Time
}

// NewPeriodUseCase construye el caso de uso.
func NewPeriodUseCase(
	labRepo repository.LaboratoryRepository,
	periodRepo repository.FiscalPeriodRepository,
	invoiceRepo repository.InvoiceRepository,
	creditNoteRepo repository.CreditNoteRepository,
	hasher DocumentHasher,
	txRunner TxRunner,
	recorder AuditRecorder,
	log zerolog.Logger,
) *PeriodUseCase {
	return &PeriodUseCase{
		labRepo:        labRepo,
		periodRepo:     periodRepo,
		invoiceRepo:    invoiceRepo,
		creditNoteRepo: creditNoteRepo,
		hasher:         hasher,
		txRunner:       txRunner,
		audit:          recorder,
		log:            log,
		now:            time.Now,
	}
}

// List periodos del laboratorio, más recientes primero.
func (uc *PeriodUseCase) List(ctx context.Context, laboratoryID string) ([]dto.FiscalPeriodView, error) {
	periods, err := uc.periodRepo.ListByLaboratory(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer periodos: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.FiscalPeriodView, 0, len(periods))
	for _, p := range periods {
		out = append(out, toPeriodView(p))
	}
	return out, nil
}

// CreateForMonth abre el mes indicado y, si aún no existen, el trimestre y el año que
// lo contienen. Devuelve solo los periodos creados en esta llamada.
func (uc *PeriodUseCase) CreateForMonth(ctx context.Context, laboratoryID string, year, month int) ([]dto.FiscalPeriodView, error) {
	if year < 2000 || year > 9999 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: mes %d/%d", domain.ErrInvalidInput, month, year)
	}
	lab, err := uc.labRepo.GetByID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer laboratorio: %v", domain.ErrPersistence, err)
	}
	if lab == nil {
		return nil, domain.ErrProfileNotFound
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	quarter := time.Date(year, time.Month((month-1)/3*3+1), 1, 0, 0, 0, 0, time.UTC)
	jan := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	candidates := []struct {
		typ        string
		start, end time.Time
	}{
		{entity.PeriodTypeMonth, first, first.AddDate(0, 1, -1)},
		{entity.PeriodTypeQuarter, quarter, quarter.AddDate(0, 3, -1)},
		{entity.PeriodTypeYear, jan, jan.AddDate(1, 0, -1)},
	}

	created := make([]dto.FiscalPeriodView, 0, len(candidates))
	for _, c := range candidates {
		p := &entity.FiscalPeriod{
			ID:           uuid.New().String(),
			LaboratoryID: laboratoryID,
			PeriodType:   c.typ,
			PeriodStart:  c.start,
			PeriodEnd:    c.end,
			Status:       entity.PeriodStatusOpen,
			CreatedAt:    uc.now().UTC(),
		}
		err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
			if err := repos.Periods.Create(ctx, p); err != nil {
				return err
			}
			_, err := uc.audit.RecordIn(ctx, repos.Audit, entity.AuditEvent{
				LaboratoryID: laboratoryID,
				EntityType:   entity.AuditEntityFiscalPeriod,
				EntityID:     p.ID,
				Operation:    entity.AuditOpCreate,
				Details:      fmt.Sprintf("%s %s..%s", p.PeriodType, p.PeriodStart.Format(time.DateOnly), p.PeriodEnd.Format(time.DateOnly)),
			})
			return err
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, persistenceErr("crear periodo", err)
		}
		created = append(created, toPeriodView(p))
	}

	uc.log.Info().
		Str("laboratory_id", laboratoryID).
		Int("year", year).
		Int("month", month).
		Int("created", len(created)).
		Msg("periodos fiscales abiertos")
	return created, nil
}

// Seal cierra el periodo: fija sus cifras y el hash combinado de las huellas de sus
// facturas (con efecto contable) y avoirs. Un periodo cerrado no vuelve a sellarse.
func (uc *PeriodUseCase) Seal(ctx context.Context, laboratoryID, periodID string) (*dto.PeriodSealResult, error) {
	p, err := uc.period(ctx, laboratoryID, periodID)
	if err != nil {
		return nil, err
	}
	if p.Closed() {
		return nil, domain.ErrPeriodClosed
	}
	now := uc.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !p.PeriodEnd.Before(today) {
		return nil, fmt.Errorf("%w: el periodo termina el %s y sigue en curso", domain.ErrInvalidInput, p.PeriodEnd.Format(time.DateOnly))
	}

	snap, err := uc.snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	closedAt := now.Truncate(time.Microsecond)
	p.InvoicesCount = snap.summary.InvoicesCount
	p.TotalRevenue = snap.summary.TotalRevenue
	p.TotalTax = snap.summary.TotalTax
	p.CreditNotesCount = snap.creditNotesCount
	p.CreditNotesTotal = snap.creditNotesTotal
	p.NetRevenue = snap.summary.NetRevenue
	p.NetTax = snap.summary.NetTax
	p.RecordsCount = len(snap.hashes)
	p.SealHash = snap.sealHash
	p.Status = entity.PeriodStatusClosed
	p.ClosedAt = &closedAt
	p.ClosedBy = audit.ActorFrom(ctx)

	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Periods.Close(ctx, p); err != nil {
			return err
		}
		_, err := uc.audit.RecordIn(ctx, repos.Audit, entity.AuditEvent{
			LaboratoryID: laboratoryID,
			EntityType:   entity.AuditEntityFiscalPeriod,
			EntityID:     p.ID,
			Operation:    entity.AuditOpSeal,
			Details:      fmt.Sprintf("hash=%s records=%d", p.SealHash, p.RecordsCount),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrPeriodClosed) {
			return nil, err
		}
		return nil, persistenceErr("cerrar periodo", err)
	}

	uc.log.Info().
		Str("laboratory_id", laboratoryID).
		Str("period_id", p.ID).
		Str("period_type", p.PeriodType).
		Int("records", p.RecordsCount).
		Int("unsigned", snap.unsigned).
		Str("seal_hash", p.SealHash).
		Msg("periodo fiscal sellado")

	return &dto.PeriodSealResult{
		PeriodID:        p.ID,
		CombinedHash:    p.SealHash,
		RecordsCount:    p.RecordsCount,
		UnsignedRecords: snap.unsigned,
		ClosedAt:        closedAt,
	}, nil
}

// VerifySeal recalcula el sello de un periodo cerrado con los documentos actuales.
func (uc *PeriodUseCase) VerifySeal(ctx context.Context, laboratoryID, periodID string) (*dto.PeriodSealCheck, error) {
	p, err := uc.period(ctx, laboratoryID, periodID)
	if err != nil {
		return nil, err
	}
	if !p.Closed() {
		return nil, fmt.Errorf("%w: el periodo no está cerrado", domain.ErrInvalidInput)
	}
	snap, err := uc.snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	res := &dto.PeriodSealCheck{
		PeriodID:       p.ID,
		StoredHash:     p.SealHash,
		CalculatedHash: snap.sealHash,
		RecordsCount:   len(snap.hashes),
	}
	res.Valid = res.StoredHash == res.CalculatedHash && res.RecordsCount == p.RecordsCount
	if !res.Valid {
		uc.log.Warn().Str("period_id", p.ID).Msg("sello de periodo no coincide")
	}
	return res, nil
}

func (uc *PeriodUseCase) period(ctx context.Context, laboratoryID, periodID string) (*entity.FiscalPeriod, error) {
	if periodID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer periodo: %v", domain.ErrPersistence, err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.LaboratoryID != laboratoryID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

type periodSnapshot struct {
	summary          FiscalPeriodReport
	creditNotesCount int
	creditNotesTotal decimal.Decimal
	hashes           []string
	unsigned         int
	sealHash         string
}

// snapshot: facturas con efecto contable y luego avoirs, cada grupo por fecha y número.
// La huella de cada documento es la firmada o, si no tiene firma, la actual.
func (uc *PeriodUseCase) snapshot(ctx context.Context, p *entity.FiscalPeriod) (*periodSnapshot, error) {
	invoices, err := uc.invoiceRepo.ListByPeriod(ctx, p.LaboratoryID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: leer facturas: %v", domain.ErrPersistence, err)
	}
	creditNotes, err := uc.creditNoteRepo.ListByPeriod(ctx, p.LaboratoryID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: leer avoirs: %v", domain.ErrPersistence, err)
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return byDateNumber(invoices[i].Date, invoices[i].Number, invoices[j].Date, invoices[j].Number)
	})
	sort.SliceStable(creditNotes, func(i, j int) bool {
		return byDateNumber(creditNotes[i].Date, creditNotes[i].Number, creditNotes[j].Date, creditNotes[j].Number)
	})

	snap := &periodSnapshot{summary: summarizePeriod(invoices, nil, creditNotes)}
	add := func(docType, id string, sig entity.Signature) error {
		h := sig.HashSHA256
		if h == "" {
			snap.unsigned++
			var err error
			if h, err = uc.hasher.DocumentHash(ctx, docType, id); err != nil {
				return fmt.Errorf("%w: %s %s: %v", domain.ErrHashComputation, docType, id, err)
			}
		}
		snap.hashes = append(snap.hashes, h)
		return nil
	}
	for _, inv := range invoices {
		if !inv.Accountable() {
			continue
		}
		if err := add(entity.DocumentInvoice, inv.ID, inv.Signature); err != nil {
			return nil, err
		}
	}
	for _, cn := range creditNotes {
		snap.creditNotesCount++
		snap.creditNotesTotal = snap.creditNotesTotal.Add(cn.Total)
		if err := add(entity.DocumentCreditNote, cn.ID, cn.Signature); err != nil {
			return nil, err
		}
	}

	snap.sealHash, err = fiscalhash.SealHash(fiscalhash.SealInput{
		LaboratoryID: p.LaboratoryID,
		PeriodType:   p.PeriodType,
		Start:        p.PeriodStart,
		End:          p.PeriodEnd,
		Hashes:       snap.hashes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sello: %v", domain.ErrHashComputation, err)
	}
	return snap, nil
}

func byDateNumber(di time.Time, ni string, dj time.Time, nj string) bool {
	if !di.Equal(dj) {
		return di.Before(dj)
	}
	return ni < nj
}

// persistenceErr deja pasar los errores ya clasificados y envuelve el resto.
func persistenceErr(what string, err error) error {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, what, err)
}

func toPeriodView(p *entity.FiscalPeriod) dto.FiscalPeriodView {
	return dto.FiscalPeriodView{
		ID:               p.ID,
		PeriodType:       p.PeriodType,
		PeriodStart:      p.PeriodStart.Format(time.DateOnly),
		PeriodEnd:        p.PeriodEnd.Format(time.DateOnly),
		Status:           p.Status,
		InvoicesCount:    p.InvoicesCount,
		TotalRevenue:     p.TotalRevenue.StringFixed(2),
		TotalTax:         p.TotalTax.StringFixed(2),
		CreditNotesCount: p.CreditNotesCount,
		CreditNotesTotal: p.CreditNotesTotal.StringFixed(2),
		NetRevenue:       p.NetRevenue.StringFixed(2),
		NetTax:           p.NetTax.StringFixed(2),
		RecordsCount:     p.RecordsCount,
		SealHash:         p.SealHash,
		ClosedAt:         p.ClosedAt,
	}
}
