package repository

import (
	"context"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// FiscalPeriodRepository puerto de persistencia de periodos fiscales.
type FiscalPeriodRepository interface {
	// Create inserta el periodo; si ya existe uno del mismo tipo e inicio devuelve domain.ErrAlreadyExists.
	Create(ctx context.Context, p *entity.FiscalPeriod) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.FiscalPeriod, error)
	// ListByLaboratory periodos del laboratorio, más recientes primero.
	ListByLaboratory(ctx context.Context, laboratoryID string) ([]*entity.FiscalPeriod, error)
	// Close guarda cifras y sello solo si el periodo sigue abierto; si no, domain.ErrPeriodClosed.
	Close(ctx context.Context, p *entity.FiscalPeriod) error
}

// AuditLogRepository registro de auditoría encadenado, solo inserciones.
type AuditLogRepository interface {
	// Last devuelve la última entrada del laboratorio; (nil, nil) si no hay ninguna.
	// Dentro de una transacción bloquea la cadena del laboratorio hasta el commit.
	Last(ctx context.Context, laboratoryID string) (*entity.AuditEntry, error)
	// Append inserta la entrada; si la secuencia ya está usada devuelve domain.ErrConflict.
	Append(ctx context.Context, e *entity.AuditEntry) error
	// ListChain entradas en orden de secuencia ascendente, como máximo limit.
	ListChain(ctx context.Context, laboratoryID string, limit int) ([]*entity.AuditEntry, error)
	// Recent últimas entradas (descendente), opcionalmente filtradas por tipo de entidad.
	Recent(ctx context.Context, laboratoryID, entityType string, limit int) ([]*entity.AuditEntry, error)
}

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Certificates CertificateRepository
	Documents    SignableDocumentRepository
	Periods      FiscalPeriodRepository
	Audit        AuditLogRepository
}
