package signing_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/pkg/signature"
)

// 2048 bits para que los tests sean rápidos; producción usa 4096.
var testCfg = signing.Config{KeyBits: 2048, ValidityYears: 3}

func (f *fixture) certificates() *signing.CertificateUseCase {
	return signing.NewCertificateUseCase(f.labs, f.certs, f.tx(), f.vault, f.journal, testCfg, zerolog.Nop())
}

func TestIssueCertificate_EmiteYSellaLaLlave(t *testing.T) {
	f := newFixture(t)

	view, err := f.certificates().IssueCertificate(context.Background(), labID)
	require.NoError(t, err)

	assert.Regexp(t, "^[0-9a-f]{32}$", view.SerialNumber)
	assert.Equal(t, "RSA-2048", view.Algorithm)
	assert.Equal(t, "CN=Cabinet Dupont, O=DentalCloud, C=FR", view.Subject)
	assert.Equal(t, "CN=DentalCloud Self-Signed CA, O=DentalCloud, C=FR", view.Issuer)
	assert.Equal(t, view.ValidFrom.AddDate(3, 0, 0), view.ValidUntil)
	assert.Empty(t, view.PublicKey, "la respuesta de emisión es la vista reducida")

	stored := f.certs.byLab[labID]
	require.NotNil(t, stored)
	assert.Equal(t, "self_signed", stored.Type)
	assert.True(t, strings.HasPrefix(stored.PrivateKey, "v1:"), "la llave privada se guarda cifrada")

	pk8, err := f.vault.Open(labID, stored.PrivateKey)
	require.NoError(t, err)
	_, err = signature.ParsePrivateKey(string(pk8))
	require.NoError(t, err, "el sobre contiene una llave PKCS#8 válida")
	_, err = signature.ParsePublicKey(stored.PublicKey)
	require.NoError(t, err)
}

func TestIssueCertificate_SegundaEmisionAlreadyExists(t *testing.T) {
	f := newFixture(t)
	uc := f.certificates()
	ctx := context.Background()

	first, err := uc.IssueCertificate(ctx, labID)
	require.NoError(t, err)
	original := *f.certs.byLab[labID]

	_, err = uc.IssueCertificate(ctx, labID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	assert.Equal(t, original, *f.certs.byLab[labID], "el certificado original no cambia")
	assert.Equal(t, first.SerialNumber, f.certs.byLab[labID].SerialNumber)
	assert.Len(t, f.audit.entries, 1, "la emisión rechazada no deja rastro")
}

func TestIssueCertificate_RegistraEmisionEnAuditoria(t *testing.T) {
	f := newFixture(t)

	view, err := f.certificates().IssueCertificate(context.Background(), labID)
	require.NoError(t, err)

	require.Len(t, f.audit.entries, 1)
	e := f.audit.entries[0]
	assert.Equal(t, int64(1), e.SequenceNumber)
	assert.Empty(t, e.PreviousHash, "primer eslabón del laboratorio")
	assert.Equal(t, entity.AuditEntityCertificate, e.EntityType)
	assert.Equal(t, view.ID, e.EntityID)
	assert.Equal(t, entity.AuditOpCreate, e.Operation)
	assert.Contains(t, e.Details, "serial="+view.SerialNumber)
	assert.Len(t, e.HashSHA256, 64)
}

func TestIssueCertificate_LaboratorioInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.certificates().IssueCertificate(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrProfileNotFound))
	assert.Empty(t, f.certs.byLab)
}

func TestGetCertificate_IncluyeLlavePublica(t *testing.T) {
	f := newFixture(t)
	uc := f.certificates()
	ctx := context.Background()

	_, err := uc.GetCertificate(ctx, labID)
	assert.True(t, errors.Is(err, domain.ErrCertificateNotFound))

	_, err = uc.IssueCertificate(ctx, labID)
	require.NoError(t, err)
	view, err := uc.GetCertificate(ctx, labID)
	require.NoError(t, err)
	assert.NotEmpty(t, view.PublicKey)
}
