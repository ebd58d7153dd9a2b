package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

const (
	labID      = "00000000-0000-0000-0000-000000000001"
	otherLabID = "00000000-0000-0000-0000-000000000002"
)

// memLog registro en memoria. conflicts fuerza ErrConflict en los próximos Append.
type memLog struct {
	entries   []*entity.AuditEntry
	conflicts int
}

func (m *memLog) Last(_ context.Context, lab string) (*entity.AuditEntry, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].LaboratoryID == lab {
			return m.entries[i], nil
		}
	}
	return nil, nil
}

func (m *memLog) Append(_ context.Context, e *entity.AuditEntry) error {
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrConflict
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) ListChain(_ context.Context, lab string, limit int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for _, e := range m.entries {
		if e.LaboratoryID == lab && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLog) Recent(_ context.Context, lab, entityType string, limit int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if e.LaboratoryID == lab && (entityType == "" || e.EntityType == entityType) {
			out = append(out, e)
		}
	}
	return out, nil
}

func event(lab, entityType, id, op string) entity.AuditEvent {
	return entity.AuditEvent{LaboratoryID: lab, EntityType: entityType, EntityID: id, Operation: op, Details: "hash=abc"}
}

func record(t *testing.T, j *audit.Journal, events ...entity.AuditEvent) {
	t.Helper()
	for _, ev := range events {
		_, err := j.Record(context.Background(), ev)
		require.NoError(t, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Record
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_EncadenaPorLaboratorio(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())
	record(t, j,
		event(labID, entity.AuditEntityCertificate, "c1", entity.AuditOpCreate),
		event(otherLabID, entity.AuditEntityCertificate, "c2", entity.AuditOpCreate),
		event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign),
	)

	require.Len(t, repo.entries, 3)
	first, other, second := repo.entries[0], repo.entries[1], repo.entries[2]
	assert.Equal(t, int64(1), first.SequenceNumber)
	assert.Equal(t, int64(1), other.SequenceNumber, "cada laboratorio tiene su propia cadena")
	assert.Equal(t, int64(2), second.SequenceNumber)
	assert.Equal(t, first.HashSHA256, second.PreviousHash)
	assert.Empty(t, other.PreviousHash)
}

func TestRecord_UsuarioDelContexto(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())

	ctx := audit.WithActor(context.Background(), "user-7")
	_, err := j.Record(ctx, event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign))
	require.NoError(t, err)
	assert.Equal(t, "user-7", repo.entries[0].UserID)
	assert.Empty(t, audit.ActorFrom(context.Background()))
}

func TestRecord_ReintentaTrasConflicto(t *testing.T) {
	repo := &memLog{conflicts: 2}
	j := audit.NewJournal(repo, zerolog.Nop())

	e, err := j.Record(context.Background(), event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign))
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.SequenceNumber)

	repo.conflicts = 3
	_, err = j.Record(context.Background(), event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpResign))
	assert.True(t, errors.Is(err, domain.ErrConflict), "se rinde tras los reintentos")
}

func TestRecord_EventoIncompleto(t *testing.T) {
	j := audit.NewJournal(&memLog{}, zerolog.Nop())
	_, err := j.Record(context.Background(), entity.AuditEvent{LaboratoryID: labID, Operation: entity.AuditOpSign})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyChain
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyChain_CadenaIntacta(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())
	record(t, j,
		event(labID, entity.AuditEntityCertificate, "c1", entity.AuditOpCreate),
		event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign),
		event(labID, entity.AuditEntityCreditNote, "a1", entity.AuditOpSign),
	)

	res, err := j.VerifyChain(context.Background(), labID, 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 3, res.Checked)
	assert.Zero(t, res.FirstInvalidSequence)
	for _, c := range res.Entries {
		assert.Equal(t, c.StoredHash, c.CalculatedHash)
	}
}

func TestVerifyChain_DetectaEntradaAlterada(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())
	record(t, j,
		event(labID, entity.AuditEntityCertificate, "c1", entity.AuditOpCreate),
		event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign),
		event(labID, entity.AuditEntityInvoice, "i2", entity.AuditOpSign),
	)
	repo.entries[1].Details = "hash=otro"

	res, err := j.VerifyChain(context.Background(), labID, 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, int64(2), res.FirstInvalidSequence)
	assert.True(t, res.Entries[0].IsValid)
	assert.False(t, res.Entries[1].IsValid)
	assert.True(t, res.Entries[2].IsValid, "el eslabón siguiente sigue apuntando al hash guardado")
}

func TestVerifyChain_DetectaEntradaBorrada(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())
	record(t, j,
		event(labID, entity.AuditEntityCertificate, "c1", entity.AuditOpCreate),
		event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign),
		event(labID, entity.AuditEntityInvoice, "i2", entity.AuditOpSign),
	)
	repo.entries = append(repo.entries[:1], repo.entries[2:]...)

	res, err := j.VerifyChain(context.Background(), labID, 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, int64(3), res.FirstInvalidSequence)
}

func TestVerifyChain_LaboratorioSinEntradas(t *testing.T) {
	j := audit.NewJournal(&memLog{}, zerolog.Nop())
	res, err := j.VerifyChain(context.Background(), labID, 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Zero(t, res.Checked)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entries
// ──────────────────────────────────────────────────────────────────────────────

func TestEntries_FiltraYOrdenaDescendente(t *testing.T) {
	repo := &memLog{}
	j := audit.NewJournal(repo, zerolog.Nop())
	record(t, j,
		event(labID, entity.AuditEntityCertificate, "c1", entity.AuditOpCreate),
		event(labID, entity.AuditEntityInvoice, "i1", entity.AuditOpSign),
		event(labID, entity.AuditEntityInvoice, "i2", entity.AuditOpSign),
	)

	all, err := j.Entries(context.Background(), labID, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].SequenceNumber)

	invoices, err := j.Entries(context.Background(), labID, entity.AuditEntityInvoice, 1)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "i2", invoices[0].EntityID)
}
