package signing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/pkg/signature"
)

func (f *fixture) signer(policy string) *signing.SignatureUseCase {
	return signing.NewSignatureUseCase(f.docs, f.certs, f.hasher, f.vault, f.tx(), f.journal, policy, zerolog.Nop())
}

func (f *fixture) issue(t *testing.T) {
	t.Helper()
	_, err := f.certificates().IssueCertificate(context.Background(), labID)
	require.NoError(t, err)
}

func TestSignDocument_FirmaVerificableConLaLlavePublica(t *testing.T) {
	f := newFixture(t)
	f.issue(t)

	res, err := f.signer(signing.ResignOverwrite).SignDocument(context.Background(), labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, testHash, res.Hash)
	assert.Equal(t, f.certs.byLab[labID].SerialNumber, res.CertificateSerial)
	_, err = time.Parse(time.RFC3339Nano, res.Timestamp)
	require.NoError(t, err, "timestamp en ISO 8601")

	pub := f.certs.byLab[labID].PublicKey
	assert.NoError(t, signature.Verify(pub, []byte(testHash), res.Signature))

	tampered := testHash[:10] + "0" + testHash[11:]
	require.NotEqual(t, testHash, tampered)
	assert.Error(t, signature.Verify(pub, []byte(tampered), res.Signature), "un carácter distinto invalida la firma")

	stored := f.docs.docs[entity.DocumentInvoice+"/"+invoiceID].Signature
	assert.Equal(t, res.Signature, stored.DigitalSignature)
	assert.Equal(t, testHash, stored.HashSHA256)
	require.NotNil(t, stored.SignatureTimestamp)
}

func TestSignDocument_Errores(t *testing.T) {
	f := newFixture(t)
	uc := f.signer(signing.ResignOverwrite)
	ctx := context.Background()

	_, err := uc.SignDocument(ctx, labID, "receipt", invoiceID)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "tipo de documento inválido")

	_, err = uc.SignDocument(ctx, labID, entity.DocumentCreditNote, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "el avoir no existe")

	_, err = uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrCertificateNotFound), "sin certificado")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "certificado ausente es un NotFound")

	f.issue(t)
	_, err = uc.SignDocument(ctx, otherLabID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "otro laboratorio no puede firmar")

	f.hasher.err = errHashRPC
	_, err = uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrHashComputation))
	assert.False(t, f.docs.docs[entity.DocumentInvoice+"/"+invoiceID].Signature.Signed(), "nada se escribe si falla el hash")
}

func TestSignDocument_LlaveCorruptaSigningError(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	f.certs.byLab[labID].PrivateKey = "v1:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	_, err := f.signer(signing.ResignOverwrite).SignDocument(context.Background(), labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrSigning))
}

func TestSignDocument_PoliticaOverwrite(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	uc := f.signer(signing.ResignOverwrite)
	ctx := context.Background()

	first, err := uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	second, err := uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Signature, second.Signature, "PSS es aleatorio: firmas distintas sobre el mismo hash")
	pub := f.certs.byLab[labID].PublicKey
	assert.NoError(t, signature.Verify(pub, []byte(testHash), first.Signature))
	assert.NoError(t, signature.Verify(pub, []byte(testHash), second.Signature))
	assert.Equal(t, second.Signature, f.docs.docs[entity.DocumentInvoice+"/"+invoiceID].Signature.DigitalSignature)
}

func TestSignDocument_PoliticaReject(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	uc := f.signer(signing.ResignReject)
	ctx := context.Background()

	first, err := uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	_, err = uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrAlreadySigned))
	assert.Equal(t, first.Signature, f.docs.docs[entity.DocumentInvoice+"/"+invoiceID].Signature.DigitalSignature)
}

func TestSignDocument_FirmaConcurrenteConflict(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	f.docs.beforeUpdate = func(doc *entity.SignableDocument) {
		other := time.Now().Add(-time.Minute)
		doc.Signature = entity.Signature{DigitalSignature: "otra", HashSHA256: testHash, SignatureTimestamp: &other}
	}

	_, err := f.signer(signing.ResignOverwrite).SignDocument(context.Background(), labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, "otra", f.docs.docs[entity.DocumentInvoice+"/"+invoiceID].Signature.DigitalSignature)
}

func TestVerifyDocument_ValidaYDetectaDocumentoModificado(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	uc := f.signer(signing.ResignOverwrite)
	ctx := context.Background()

	res, err := uc.VerifyDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	assert.False(t, res.Signed)
	assert.False(t, res.Valid)

	_, err = uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)

	res, err = uc.VerifyDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.False(t, res.Stale)

	// el documento cambia después de la firma: el hash recalculado ya no coincide
	f.hasher.hash = "0000000000000000000000000000000000000000000000000000000000000000"
	res, err = uc.VerifyDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.False(t, res.Valid)
	assert.Equal(t, testHash, res.StoredHash)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría de firmas
// ──────────────────────────────────────────────────────────────────────────────

func TestSignDocument_RegistraFirmaYRefirmaEnLaCadena(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	uc := f.signer(signing.ResignOverwrite)
	ctx := audit.WithActor(context.Background(), "user-42")

	_, err := uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)
	_, err = uc.SignDocument(ctx, labID, entity.DocumentInvoice, invoiceID)
	require.NoError(t, err)

	require.Len(t, f.audit.entries, 3, "emisión + firma + re-firma")
	sign, resign := f.audit.entries[1], f.audit.entries[2]
	assert.Equal(t, entity.AuditOpSign, sign.Operation)
	assert.Equal(t, entity.AuditOpResign, resign.Operation)
	assert.Equal(t, entity.DocumentInvoice, sign.EntityType)
	assert.Equal(t, invoiceID, sign.EntityID)
	assert.Equal(t, "user-42", sign.UserID)
	assert.Contains(t, sign.Details, "hash="+testHash)
	assert.Equal(t, sign.HashSHA256, resign.PreviousHash)

	chain, err := f.journal.VerifyChain(context.Background(), labID, 0)
	require.NoError(t, err)
	assert.True(t, chain.Valid)
	assert.Equal(t, 3, chain.Checked)
}

func TestSignDocument_FalloDeAuditoriaEsErrorDePersistencia(t *testing.T) {
	f := newFixture(t)
	f.issue(t)
	f.audit.failAppend = errors.New("disco lleno")

	_, err := f.signer(signing.ResignOverwrite).SignDocument(context.Background(), labID, entity.DocumentInvoice, invoiceID)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}
