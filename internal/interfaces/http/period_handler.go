package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

// PeriodHandler apertura, cierre sellado y verificación de periodos fiscales.
type PeriodHandler struct {
	uc *fiscal.PeriodUseCase
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(uc *fiscal.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{uc: uc}
}

// List godoc
// @Summary      Periodos fiscales del laboratorio
// @Tags         periods
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.FiscalPeriodView
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/fiscal/periods [get]
func (h *PeriodHandler) List(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	periods, err := h.uc.List(c.UserContext(), labID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(periods)
}

// Create godoc
// @Summary      Abrir periodos de un mes
// @Description  Crea el mes y, si faltan, el trimestre y el año que lo contienen. Devuelve solo los creados.
// @Tags         periods
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePeriodsRequest  true  "year, month"
// @Success      201   {array}   dto.FiscalPeriodView
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fiscal/periods [post]
func (h *PeriodHandler) Create(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePeriodsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	created, err := h.uc.CreateForMonth(c.UserContext(), labID, in.Year, in.Month)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Seal godoc
// @Summary      Cerrar y sellar periodo
// @Description  Fija las cifras del periodo y el SHA-256 combinado de las huellas de sus facturas y avoirs.
// @Tags         periods
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del periodo"
// @Success      200  {object}  dto.PeriodSealResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fiscal/periods/{id}/seal [post]
func (h *PeriodHandler) Seal(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	res, err := h.uc.Seal(c.UserContext(), labID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// VerifySeal godoc
// @Summary      Verificar sello de periodo
// @Description  Recalcula el sello con los documentos actuales y lo compara con el guardado.
// @Tags         periods
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del periodo"
// @Success      200  {object}  dto.PeriodSealCheck
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/periods/{id}/verify [get]
func (h *PeriodHandler) VerifySeal(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	res, err := h.uc.VerifySeal(c.UserContext(), labID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
