package signing

import (
	"context"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
)

// HashCalculator calcula la huella canónica de un documento a partir de su estado persistido actual.
type HashCalculator interface {
	DocumentHash(ctx context.Context, docType, id string) (string, error)
}

// KeyVault sella y abre el material de llave privada de un laboratorio.
type KeyVault interface {
	Seal(laboratoryID string, plaintext []byte) (string, error)
	Open(laboratoryID, envelope string) ([]byte, error)
}

// TxRunner ejecuta fn con repositorios atados a una transacción: commit si fn no falla.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// AuditRecorder añade eventos a la cadena de auditoría usando el repositorio de la transacción.
type AuditRecorder interface {
	RecordIn(ctx context.Context, repo repository.AuditLogRepository, ev entity.AuditEvent) (*entity.AuditEntry, error)
}
