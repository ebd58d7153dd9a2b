package fiscal

import (
	"context"

	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

// PDFRenderer genera las representaciones PDF de los documentos fiscales.
// Recibe cifras ya agregadas: no lee repositorios ni aplica reglas de negocio.
type PDFRenderer interface {
	RenderCreditNote(ctx context.Context, doc CreditNoteDocument) ([]byte, error)
	RenderFiscalReport(ctx context.Context, report FiscalPeriodReport) ([]byte, error)
	RenderAnnualVAT(ctx context.Context, report AnnualVATReport) ([]byte, error)
}

// Encoded fichero FEC serializado en un formato alternativo al texto plano.
type Encoded struct {
	Content     []byte
	ContentType string
	Extension   string // sin punto: "xml", "xlsx"
	Digest      string // huella del contenido canónico, si el formato la define
}

// FECEncoder serializa las líneas ya validadas y ordenadas de un export.
type FECEncoder interface {
	Encode(exp fec.Export, lines []fec.Line) (*Encoded, error)
}

// DocumentHasher huella v1 actual de una factura o avoir (documentos sin firmar al sellar).
type DocumentHasher interface {
	DocumentHash(ctx context.Context, docType, id string) (string, error)
}

// TxRunner ejecuta fn con repositorios atados a una transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// AuditRecorder añade eventos a la cadena de auditoría dentro de la transacción.
type AuditRecorder interface {
	RecordIn(ctx context.Context, repo repository.AuditLogRepository, ev entity.AuditEvent) (*entity.AuditEntry, error)
}
