package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// SignatureHandler firma y verificación de facturas y avoirs.
type SignatureHandler struct {
	uc *signing.SignatureUseCase
}

// NewSignatureHandler construye el handler.
func NewSignatureHandler(uc *signing.SignatureUseCase) *SignatureHandler {
	return &SignatureHandler{uc: uc}
}

// parseSignRequest devuelve código y mensaje de error vacíos si el cuerpo es válido.
func parseSignRequest(c *fiber.Ctx) (in dto.SignRequest, code, msg string) {
	if err := c.BodyParser(&in); err != nil {
		return in, "INVALID_BODY", "cuerpo inválido"
	}
	if !entity.ValidDocumentType(in.DocumentType) || in.DocumentID == "" {
		return in, "VALIDATION", "documentType (invoice|credit_note) y documentId son requeridos"
	}
	return in, "", ""
}

// Sign godoc
// @Summary      Firmar documento
// @Description  Recalcula el hash SHA-256 del documento y lo firma con RSA-PSS. Re-firmar sobrescribe.
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SignRequest  true  "documentType, documentId"
// @Success      200   {object}  dto.SignatureResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/signatures [post]
func (h *SignatureHandler) Sign(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	in, code, msg := parseSignRequest(c)
	if code != "" {
		return badRequest(c, code, msg)
	}
	res, err := h.uc.SignDocument(c.UserContext(), labID, in.DocumentType, in.DocumentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Verify godoc
// @Summary      Verificar firma
// @Description  Comprueba la firma guardada y si el documento cambió desde que se firmó.
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SignRequest  true  "documentType, documentId"
// @Success      200   {object}  dto.VerifyResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/signatures/verify [post]
func (h *SignatureHandler) Verify(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	in, code, msg := parseSignRequest(c)
	if code != "" {
		return badRequest(c, code, msg)
	}
	res, err := h.uc.VerifyDocument(c.UserContext(), labID, in.DocumentType, in.DocumentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
