package signing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/signature"
)

// Config parámetros de emisión y firma.
type Config struct {
	KeyBits       int
	ValidityYears int
	IssuerOrg     string
	Country       string
}

// Políticas de re-firma.
const (
	ResignOverwrite = "overwrite"
	ResignReject    = "reject"
)

// CertificateUseCase emite el certificado autofirmado de un laboratorio.
type CertificateUseCase struct {
	labRepo  repository.LaboratoryRepository
	certRepo repository.CertificateRepository
	txRunner TxRunner
	vault    KeyVault
	audit    AuditRecorder
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewCertificateUseCase construye el caso de uso.
func NewCertificateUseCase(
	labRepo repository.LaboratoryRepository,
	certRepo repository.CertificateRepository,
	txRunner TxRunner,
	vault KeyVault,
	audit AuditRecorder,
	cfg Config,
	log zerolog.Logger,
) *CertificateUseCase {
	if cfg.KeyBits == 0 {
		cfg.KeyBits = 4096
	}
	if cfg.ValidityYears == 0 {
		cfg.ValidityYears = 3
	}
	if cfg.IssuerOrg == "" {
		cfg.IssuerOrg = "DentalCloud"
	}
	if cfg.Country == "" {
		cfg.Country = "FR"
	}
	return &CertificateUseCase{
		labRepo:  labRepo,
		certRepo: certRepo,
		txRunner: txRunner,
		vault:    vault,
		audit:    audit,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// IssueCertificate genera llaves RSA, sella la privada y persiste el certificado.
// Un segundo intento para el mismo laboratorio devuelve ErrAlreadyExists sin tocar el original.
func (uc *CertificateUseCase) IssueCertificate(ctx context.Context, laboratoryID string) (*dto.CertificateView, error) {
	lab, err := uc.labRepo.GetByID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer laboratorio: %v", domain.ErrPersistence, err)
	}
	if lab == nil {
		return nil, domain.ErrProfileNotFound
	}
	// comprobación previa para no generar 4096 bits en vano; la garantía real es el UNIQUE
	existing, err := uc.certRepo.GetByLaboratoryID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer certificado: %v", domain.ErrPersistence, err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	kp, err := signature.GenerateKeyPair(uc.cfg.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	serial, err := signature.NewSerial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	sealed, err := uc.vault.Seal(laboratoryID, []byte(kp.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	now := uc.now().UTC().Truncate(time.Second)
	cert := &entity.Certificate{
		ID:           uuid.New().String(),
		LaboratoryID: laboratoryID,
		Type:         entity.CertificateTypeSelfSigned,
		PublicKey:    kp.PublicKey,
		PrivateKey:   sealed,
		Algorithm:    signature.AlgorithmLabel(kp.Bits),
		SerialNumber: serial,
		Subject:      fmt.Sprintf("CN=%s, O=%s, C=%s", lab.Name, uc.cfg.IssuerOrg, uc.cfg.Country),
		Issuer:       fmt.Sprintf("CN=%s Self-Signed CA, O=%s, C=%s", uc.cfg.IssuerOrg, uc.cfg.IssuerOrg, uc.cfg.Country),
		ValidFrom:    now,
		ValidUntil:   now.AddDate(uc.cfg.ValidityYears, 0, 0),
		CreatedAt:    now,
	}

	// certificado y entrada de auditoría se confirman juntos
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		current, err := repos.Certificates.GetByLaboratoryID(ctx, laboratoryID)
		if err != nil {
			return err
		}
		if current != nil {
			return domain.ErrAlreadyExists
		}
		if err := repos.Certificates.Create(ctx, cert); err != nil {
			return err
		}
		_, err = uc.audit.RecordIn(ctx, repos.Audit, entity.AuditEvent{
			LaboratoryID: laboratoryID,
			EntityType:   entity.AuditEntityCertificate,
			EntityID:     cert.ID,
			Operation:    entity.AuditOpCreate,
			Details:      fmt.Sprintf("serial=%s algorithm=%s", cert.SerialNumber, cert.Algorithm),
		})
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, domain.ErrAlreadyExists
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrPersistence):
			return nil, err
		}
		return nil, fmt.Errorf("%w: guardar certificado: %v", domain.ErrPersistence, err)
	}

	uc.log.Info().
		Str("laboratory_id", laboratoryID).
		Str("serial", cert.SerialNumber).
		Str("algorithm", cert.Algorithm).
		Time("valid_until", cert.ValidUntil).
		Msg("certificado emitido")
	return toCertificateView(cert, false), nil
}

// GetCertificate devuelve la vista del certificado del laboratorio, con llave pública.
func (uc *CertificateUseCase) GetCertificate(ctx context.Context, laboratoryID string) (*dto.CertificateView, error) {
	cert, err := uc.certRepo.GetByLaboratoryID(ctx, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer certificado: %v", domain.ErrPersistence, err)
	}
	if cert == nil {
		return nil, domain.ErrCertificateNotFound
	}
	return toCertificateView(cert, true), nil
}

func toCertificateView(c *entity.Certificate, withPublicKey bool) *dto.CertificateView {
	v := &dto.CertificateView{
		ID:           c.ID,
		SerialNumber: c.SerialNumber,
		ValidFrom:    c.ValidFrom,
		ValidUntil:   c.ValidUntil,
		Algorithm:    c.Algorithm,
		Subject:      c.Subject,
		Issuer:       c.Issuer,
	}
	if withPublicKey {
		v.PublicKey = c.PublicKey
	}
	return v
}
