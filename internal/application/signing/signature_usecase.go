package signing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/internal/domain/repository"
	"github.com/jhoicas/dentalcloud-api/pkg/signature"
)

// SignatureUseCase firma facturas y avoirs con el certificado del laboratorio dueño.
type SignatureUseCase struct {
	docRepo  repository.SignableDocumentRepository
	certRepo repository.CertificateRepository
	hasher   HashCalculator
	vault    KeyVault
	txRunner TxRunner
	audit    AuditRecorder
	policy   string
	log      zerolog.Logger
	now      func() time.Time
}

// NewSignatureUseCase construye el caso de uso. policy vacía equivale a overwrite.
func NewSignatureUseCase(
	docRepo repository.SignableDocumentRepository,
	certRepo repository.CertificateRepository,
	hasher HashCalculator,
	vault KeyVault,
	txRunner TxRunner,
	audit AuditRecorder,
	policy string,
	log zerolog.Logger,
) *SignatureUseCase {
	if policy == "" {
		policy = ResignOverwrite
	}
	return &SignatureUseCase{
		docRepo:  docRepo,
		certRepo: certRepo,
		hasher:   hasher,
		vault:    vault,
		txRunner: txRunner,
		audit:    audit,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// SignDocument recalcula el hash del documento, lo firma con RSA-PSS y guarda firma, hash y fecha.
func (uc *SignatureUseCase) SignDocument(ctx context.Context, callerLaboratoryID, docType, docID string) (*dto.SignatureResult, error) {
	doc, cert, err := uc.resolve(ctx, callerLaboratoryID, docType, docID)
	if err != nil {
		return nil, err
	}
	if uc.policy == ResignReject && doc.Signature.Signed() {
		return nil, domain.ErrAlreadySigned
	}

	hash, err := uc.hasher.DocumentHash(ctx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHashComputation, err)
	}
	if hash == "" {
		return nil, fmt.Errorf("%w: hash vacío", domain.ErrHashComputation)
	}

	sig, err := uc.sign(cert, []byte(hash))
	if err != nil {
		return nil, err
	}

	// precisión de microsegundos: la misma que guarda timestamptz, para el compare-and-set
	now := uc.now().UTC().Truncate(time.Microsecond)
	newSig := entity.Signature{DigitalSignature: sig, HashSHA256: hash, SignatureTimestamp: &now}
	op := entity.AuditOpSign
	if doc.Signature.Signed() {
		op = entity.AuditOpResign
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Documents.UpdateSignature(ctx, docType, docID, newSig, doc.Signature.SignatureTimestamp); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return fmt.Errorf("%w: guardar firma: %v", domain.ErrPersistence, err)
		}
		_, err := uc.audit.RecordIn(ctx, repos.Audit, entity.AuditEvent{
			LaboratoryID: doc.LaboratoryID,
			EntityType:   docType,
			EntityID:     docID,
			Operation:    op,
			Details:      fmt.Sprintf("hash=%s serial=%s", hash, cert.SerialNumber),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: guardar firma: %v", domain.ErrPersistence, err)
	}

	uc.log.Info().
		Str("laboratory_id", doc.LaboratoryID).
		Str("document_type", docType).
		Str("document_id", docID).
		Str("serial", cert.SerialNumber).
		Bool("resigned", doc.Signature.Signed()).
		Msg("documento firmado")

	return &dto.SignatureResult{
		Success:           true,
		Signature:         sig,
		Hash:              hash,
		Timestamp:         now.Format(time.RFC3339Nano),
		CertificateSerial: cert.SerialNumber,
	}, nil
}

// VerifyDocument comprueba que la firma guardada sea válida y que el hash siga
// correspondiendo al estado actual del documento.
func (uc *SignatureUseCase) VerifyDocument(ctx context.Context, callerLaboratoryID, docType, docID string) (*dto.VerifyResult, error) {
	doc, cert, err := uc.resolve(ctx, callerLaboratoryID, docType, docID)
	if err != nil {
		return nil, err
	}
	res := &dto.VerifyResult{
		Signed:            doc.Signature.Signed(),
		StoredHash:        doc.Signature.HashSHA256,
		CertificateSerial: cert.SerialNumber,
	}
	hash, err := uc.hasher.DocumentHash(ctx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHashComputation, err)
	}
	res.Hash = hash
	if !res.Signed {
		return res, nil
	}
	res.Stale = hash != doc.Signature.HashSHA256
	sigErr := signature.Verify(cert.PublicKey, []byte(doc.Signature.HashSHA256), doc.Signature.DigitalSignature)
	res.Valid = sigErr == nil && !res.Stale

	uc.log.Debug().
		Str("document_type", docType).
		Str("document_id", docID).
		Bool("valid", res.Valid).
		Bool("stale", res.Stale).
		Msg("verificación de firma")
	return res, nil
}

func (uc *SignatureUseCase) resolve(ctx context.Context, callerLaboratoryID, docType, docID string) (*entity.SignableDocument, *entity.Certificate, error) {
	if !entity.ValidDocumentType(docType) || docID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	doc, err := uc.docRepo.GetSignable(ctx, docType, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: leer documento: %v", domain.ErrPersistence, err)
	}
	if doc == nil {
		return nil, nil, domain.ErrNotFound
	}
	if doc.LaboratoryID != callerLaboratoryID {
		return nil, nil, domain.ErrForbidden
	}
	cert, err := uc.certRepo.GetByLaboratoryID(ctx, doc.LaboratoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: leer certificado: %v", domain.ErrPersistence, err)
	}
	if cert == nil {
		return nil, nil, domain.ErrCertificateNotFound
	}
	return doc, cert, nil
}

func (uc *SignatureUseCase) sign(cert *entity.Certificate, message []byte) (string, error) {
	pk8, err := uc.vault.Open(cert.LaboratoryID, cert.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: abrir llave: %v", domain.ErrSigning, err)
	}
	key, err := signature.ParsePrivateKey(string(pk8))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	sig, err := signature.NewPSSSigner(key).Sign(message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return sig, nil
}
