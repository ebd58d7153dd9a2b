package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
)

// CertificateHandler emisión y consulta del certificado del laboratorio del token.
type CertificateHandler struct {
	uc *signing.CertificateUseCase
}

// NewCertificateHandler construye el handler.
func NewCertificateHandler(uc *signing.CertificateUseCase) *CertificateHandler {
	return &CertificateHandler{uc: uc}
}

// Issue godoc
// @Summary      Emitir certificado del laboratorio
// @Description  Genera el par RSA y el certificado autofirmado. Solo uno por laboratorio.
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  dto.CertificateResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/certificates [post]
func (h *CertificateHandler) Issue(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.IssueCertificate(c.UserContext(), labID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CertificateResponse{Success: true, Certificate: *view})
}

// Me godoc
// @Summary      Certificado del laboratorio
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CertificateView
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/certificates/me [get]
func (h *CertificateHandler) Me(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	view, err := h.uc.GetCertificate(c.UserContext(), labID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
