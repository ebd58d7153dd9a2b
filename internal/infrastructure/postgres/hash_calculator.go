package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

var (
	_ signing.HashCalculator = (*HashCalculator)(nil)
	_ fiscal.DocumentHasher  = (*HashCalculator)(nil)
)

// hashFunctions función SQL por tipo de documento.
var hashFunctions = map[string]string{
	entity.DocumentInvoice:    "calculate_invoice_hash",
	entity.DocumentCreditNote: "calculate_credit_note_hash",
}

// HashCalculator delega la huella canónica en las funciones calculate_*_hash de la base.
type HashCalculator struct {
	q Querier
}

// NewHashCalculator construye el adaptador.
func NewHashCalculator(q Querier) *HashCalculator {
	return &HashCalculator{q: q}
}

// DocumentHash ejecuta la función del tipo de documento. Un NULL (documento inexistente) es error.
func (c *HashCalculator) DocumentHash(ctx context.Context, docType, id string) (string, error) {
	fn, ok := hashFunctions[docType]
	if !ok {
		return "", fmt.Errorf("tipo de documento %q no soportado", docType)
	}
	var h pgtype.Text
	if err := c.q.QueryRow(ctx, fmt.Sprintf(`SELECT %s($1)`, fn), id).Scan(&h); err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	if !h.Valid || h.String == "" {
		return "", fmt.Errorf("%s devolvió NULL para %s", fn, id)
	}
	return h.String, nil
}
