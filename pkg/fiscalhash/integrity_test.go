package fiscalhash_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dentalcloud-api/pkg/fiscalhash"
)

const sealLabID = "00000000-0000-0000-0000-000000000001"

// ──────────────────────────────────────────────────────────────────────────────
// Sello de periodo
// ──────────────────────────────────────────────────────────────────────────────

func quarterSeal() fiscalhash.SealInput {
	return fiscalhash.SealInput{
		LaboratoryID: sealLabID,
		PeriodType:   "quarter",
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Hashes:       []string{invoiceHashV1, creditNoteHashV1},
	}
}

func TestSealHash_Vector(t *testing.T) {
	c, err := fiscalhash.SealCanonical(quarterSeal())
	require.NoError(t, err)
	assert.Equal(t, "v1|seal|"+sealLabID+"|quarter|2024-01-01|2024-03-31|2|"+invoiceHashV1+"|"+creditNoteHashV1, c)

	h, err := fiscalhash.SealHash(quarterSeal())
	require.NoError(t, err)
	assert.Equal(t, "927bf26783b76120ddacea8f1b577c88970456ee08f75eee1abac71f8d4e7716", h)
}

func TestSealHash_PeriodoVacio(t *testing.T) {
	h, err := fiscalhash.SealHash(fiscalhash.SealInput{
		LaboratoryID: sealLabID,
		PeriodType:   "month",
		Start:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "b6e090c2875a57ff85143651305a7365eec27143c22d8088a25bd5d33ac669f1", h)
}

func TestSealHash_OrdenYContenidoImportan(t *testing.T) {
	base, err := fiscalhash.SealHash(quarterSeal())
	require.NoError(t, err)

	s := quarterSeal()
	s.Hashes = []string{creditNoteHashV1, invoiceHashV1}
	swapped, err := fiscalhash.SealHash(s)
	require.NoError(t, err)
	assert.NotEqual(t, base, swapped)

	s = quarterSeal()
	s.Hashes = s.Hashes[:1]
	fewer, err := fiscalhash.SealHash(s)
	require.NoError(t, err)
	assert.NotEqual(t, base, fewer, "quitar un documento cambia el sello")
}

func TestSealHash_HuellaMalFormada(t *testing.T) {
	s := quarterSeal()
	s.Hashes = append(s.Hashes, "no-es-hex")
	_, err := fiscalhash.SealHash(s)
	assert.True(t, errors.Is(err, fiscalhash.ErrInvalidDocument))

	s = quarterSeal()
	s.LaboratoryID = ""
	_, err = fiscalhash.SealHash(s)
	assert.True(t, errors.Is(err, fiscalhash.ErrInvalidDocument))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cadena de auditoría
// ──────────────────────────────────────────────────────────────────────────────

func genesisLink() fiscalhash.ChainLink {
	return fiscalhash.ChainLink{
		LaboratoryID: sealLabID,
		Sequence:     1,
		EntityType:   "certificate",
		EntityID:     "cert-1",
		Operation:    "CREATE",
		Details:      "serial=abc",
		UserID:       "user-1",
		CreatedAt:    time.Date(2024, 3, 15, 11, 30, 0, 123456789, time.FixedZone("CET", 3600)),
	}
}

func TestChainHash_Vector(t *testing.T) {
	l := genesisLink()
	assert.Equal(t,
		"v1|audit|"+sealLabID+"|1|certificate|cert-1|CREATE|serial=abc|user-1|2024-03-15T10:30:00.123456Z|",
		fiscalhash.ChainCanonical(l), "fecha en UTC truncada a microsegundos")
	assert.Equal(t, "efa363acc35948a19915046a51b913c6c346afc6cd3644af1c49a294256ee974", fiscalhash.ChainHash(l))
}

func TestChainHash_DependeDelEslabonPrevio(t *testing.T) {
	first := genesisLink()
	second := genesisLink()
	second.Sequence = 2
	second.PreviousHash = fiscalhash.ChainHash(first)

	a := fiscalhash.ChainHash(second)
	second.PreviousHash = invoiceHashV1
	assert.NotEqual(t, a, fiscalhash.ChainHash(second))
}
