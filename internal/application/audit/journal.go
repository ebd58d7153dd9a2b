// Package audit mantiene el registro de auditoría encadenado por laboratorio.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fiscalhash"
)

const (
	// appendAttempts reintentos cuando otra escritura toma la misma secuencia.
	appendAttempts = 3

	DefaultRecentLimit = 100
	MaxRecentLimit     = 1000
	DefaultVerifyLimit = 1000
	MaxVerifyLimit     = 10000
)

// Journal escribe y verifica la cadena de auditoría.
type Journal struct {
	repo repository.AuditLogRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewJournal construye el registro sobre el repositorio (pool).
func NewJournal(repo repository.AuditLogRepository, log zerolog.Logger) *Journal {
	return &Journal{repo: repo, log: log, now: time.Now}
}

// Record añade el evento al final de la cadena del laboratorio, reintentando si otra
// escritura concurrente ocupó la secuencia.
func (j *Journal) Record(ctx context.Context, ev entity.AuditEvent) (*entity.AuditEntry, error) {
	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		var e *entity.AuditEntry
		e, err = j.RecordIn(ctx, j.repo, ev)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
	}
	return nil, err
}

// RecordIn añade el evento usando repo, normalmente atado a la transacción que
// persiste el hecho auditado. No reintenta: un conflicto aborta esa transacción.
func (j *Journal) RecordIn(ctx context.Context, repo repository.AuditLogRepository, ev entity.AuditEvent) (*entity.AuditEntry, error) {
	if ev.LaboratoryID == "" || ev.EntityType == "" || ev.EntityID == "" || ev.Operation == "" {
		return nil, fmt.Errorf("%w: evento de auditoría incompleto", domain.ErrInvalidInput)
	}
	if ev.UserID == "" {
		ev.UserID = ActorFrom(ctx)
	}

	last, err := repo.Last(ctx, ev.LaboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer cadena de auditoría: %v", domain.ErrPersistence, err)
	}
	e := &entity.AuditEntry{
		ID:             uuid.New().String(),
		LaboratoryID:   ev.LaboratoryID,
		SequenceNumber: 1,
		EntityType:     ev.EntityType,
		EntityID:       ev.EntityID,
		Operation:      ev.Operation,
		Details:        ev.Details,
		UserID:         ev.UserID,
		CreatedAt:      j.now().UTC().Truncate(time.Microsecond),
	}
	if last != nil {
		e.SequenceNumber = last.SequenceNumber + 1
		e.PreviousHash = last.HashSHA256
	}
	e.HashSHA256 = fiscalhash.ChainHash(link(e))

	if err := repo.Append(ctx, e); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: guardar auditoría: %v", domain.ErrPersistence, err)
	}
	j.log.Debug().
		Str("laboratory_id", e.LaboratoryID).
		Int64("sequence", e.SequenceNumber).
		Str("entity_type", e.EntityType).
		Str("operation", e.Operation).
		Msg("auditoría registrada")
	return e, nil
}

// Entries últimas entradas del laboratorio para el visor.
func (j *Journal) Entries(ctx context.Context, laboratoryID, entityType string, limit int) ([]dto.AuditEntryView, error) {
	limit = clampLimit(limit, DefaultRecentLimit, MaxRecentLimit)
	entries, err := j.repo.Recent(ctx, laboratoryID, strings.TrimSpace(entityType), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: leer auditoría: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.AuditEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryView{
			SequenceNumber: e.SequenceNumber,
			CreatedAt:      e.CreatedAt,
			EntityType:     e.EntityType,
			EntityID:       e.EntityID,
			Operation:      e.Operation,
			Details:        e.Details,
			UserID:         e.UserID,
			PreviousHash:   e.PreviousHash,
			HashSHA256:     e.HashSHA256,
		})
	}
	return out, nil
}

// VerifyChain recalcula cada eslabón desde el primero: el hash guardado, el hash previo
// y la secuencia deben coincidir con lo esperado.
func (j *Journal) VerifyChain(ctx context.Context, laboratoryID string, limit int) (*dto.AuditChainResult, error) {
	limit = clampLimit(limit, DefaultVerifyLimit, MaxVerifyLimit)
	entries, err := j.repo.ListChain(ctx, laboratoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: leer auditoría: %v", domain.ErrPersistence, err)
	}

	res := &dto.AuditChainResult{Valid: true, Entries: make([]dto.AuditCheck, 0, len(entries))}
	var (
		prevHash string
		prevSeq  int64
	)
	for _, e := range entries {
		calc := fiscalhash.ChainHash(link(e))
		ok := calc == e.HashSHA256 && e.PreviousHash == prevHash && e.SequenceNumber == prevSeq+1
		res.Entries = append(res.Entries, dto.AuditCheck{
			SequenceNumber: e.SequenceNumber,
			IsValid:        ok,
			CalculatedHash: calc,
			StoredHash:     e.HashSHA256,
			EntityType:     e.EntityType,
			Operation:      e.Operation,
			CreatedAt:      e.CreatedAt,
		})
		if !ok && res.Valid {
			res.Valid = false
			res.FirstInvalidSequence = e.SequenceNumber
		}
		prevHash, prevSeq = e.HashSHA256, e.SequenceNumber
	}
	res.Checked = len(res.Entries)

	ev := j.log.Info()
	if !res.Valid {
		ev = j.log.Warn().Int64("first_invalid", res.FirstInvalidSequence)
	}
	ev.Str("laboratory_id", laboratoryID).Int("checked", res.Checked).Bool("valid", res.Valid).Msg("cadena de auditoría verificada")
	return res, nil
}

func link(e *entity.AuditEntry) fiscalhash.ChainLink {
	return fiscalhash.ChainLink{
		LaboratoryID: e.LaboratoryID,
		Sequence:     e.SequenceNumber,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		Operation:    e.Operation,
		Details:      e.Details,
		UserID:       e.UserID,
		CreatedAt:    e.CreatedAt,
		PreviousHash: e.PreviousHash,
	}
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
