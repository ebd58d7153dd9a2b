package signing_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/keyvault"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia
// ──────────────────────────────────────────────────────────────────────────────

const (
	labID      = "00000000-0000-0000-0000-000000000001"
	otherLabID = "00000000-0000-0000-0000-000000000002"
	invoiceID  = "10000000-0000-0000-0000-000000000001"
	testHash   = "b59d9731493358dcf19d3691013ab3cc30b9034b943ba1d4179919bbcad151f5"
)

type memLabs struct{ labs map[string]*entity.Laboratory }

func (m *memLabs) Create(_ context.Context, l *entity.Laboratory) error {
	m.labs[l.ID] = l
	return nil
}

func (m *memLabs) GetByID(_ context.Context, id string) (*entity.Laboratory, error) {
	return m.labs[id], nil
}

type memCerts struct{ byLab map[string]*entity.Certificate }

func (m *memCerts) Create(_ context.Context, c *entity.Certificate) error {
	if _, ok := m.byLab[c.LaboratoryID]; ok {
		return domain.ErrAlreadyExists
	}
	m.byLab[c.LaboratoryID] = c
	return nil
}

func (m *memCerts) GetByLaboratoryID(_ context.Context, id string) (*entity.Certificate, error) {
	return m.byLab[id], nil
}

type memTx struct{ repos repository.TxRepos }

func (t memTx) Run(_ context.Context, fn func(repository.TxRepos) error) error {
	return fn(t.repos)
}

// memAudit cadena de auditoría en memoria; failAppend simula un fallo de escritura.
type memAudit struct {
	entries    []*entity.AuditEntry
	failAppend error
}

func (m *memAudit) Last(_ context.Context, lab string) (*entity.AuditEntry, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].LaboratoryID == lab {
			return m.entries[i], nil
		}
	}
	return nil, nil
}

func (m *memAudit) Append(_ context.Context, e *entity.AuditEntry) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) ListChain(_ context.Context, lab string, limit int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for _, e := range m.entries {
		if e.LaboratoryID == lab && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAudit) Recent(_ context.Context, lab, entityType string, limit int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if e.LaboratoryID == lab && (entityType == "" || e.EntityType == entityType) {
			out = append(out, e)
		}
	}
	return out, nil
}

type memDocs struct {
	docs map[string]*entity.SignableDocument
	// beforeUpdate simula una escritura concurrente entre la lectura y el update.
	beforeUpdate func(doc *entity.SignableDocument)
}

func (m *memDocs) GetSignable(_ context.Context, docType, id string) (*entity.SignableDocument, error) {
	d, ok := m.docs[docType+"/"+id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDocs) UpdateSignature(_ context.Context, docType, id string, sig entity.Signature, prev *time.Time) error {
	d, ok := m.docs[docType+"/"+id]
	if !ok {
		return domain.ErrNotFound
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(d)
	}
	cur := d.Signature.SignatureTimestamp
	switch {
	case cur == nil && prev == nil:
	case cur != nil && prev != nil && cur.Equal(*prev):
	default:
		return domain.ErrConflict
	}
	d.Signature = sig
	return nil
}

type stubHasher struct {
	hash string
	err  error
}

func (s *stubHasher) DocumentHash(context.Context, string, string) (string, error) {
	return s.hash, s.err
}

var errHashRPC = errors.New("rpc calculate_invoice_hash falló")

type fixture struct {
	labs    *memLabs
	certs   *memCerts
	docs    *memDocs
	hasher  *stubHasher
	vault   *keyvault.Vault
	audit   *memAudit
	journal *audit.Journal
}

func (f *fixture) tx() memTx {
	return memTx{repos: repository.TxRepos{Certificates: f.certs, Documents: f.docs, Audit: f.audit}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vault, err := keyvault.New(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	auditLog := &memAudit{}
	return &fixture{
		labs: &memLabs{labs: map[string]*entity.Laboratory{
			labID:      {ID: labID, Name: "Cabinet Dupont", SIRET: "12345678900011"},
			otherLabID: {ID: otherLabID, Name: "Cabinet Martin"},
		}},
		certs: &memCerts{byLab: map[string]*entity.Certificate{}},
		docs: &memDocs{docs: map[string]*entity.SignableDocument{
			entity.DocumentInvoice + "/" + invoiceID: {
				Type: entity.DocumentInvoice, ID: invoiceID, LaboratoryID: labID, Number: "FAC-001",
			},
		}},
		hasher:  &stubHasher{hash: testHash},
		vault:   vault,
		audit:   auditLog,
		journal: audit.NewJournal(auditLog, zerolog.Nop()),
	}
}
