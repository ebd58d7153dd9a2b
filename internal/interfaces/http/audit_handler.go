package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
)

// AuditHandler consulta y verificación del registro de auditoría.
type AuditHandler struct {
	journal *audit.Journal
}

// NewAuditHandler construye el handler.
func NewAuditHandler(journal *audit.Journal) *AuditHandler {
	return &AuditHandler{journal: journal}
}

// Entries godoc
// @Summary      Últimas entradas de auditoría
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        entity_type  query  string  false  "certificate | invoice | credit_note | fiscal_period"
// @Param        limit        query  int     false  "máximo de entradas (100 por defecto, 1000 como mucho)"
// @Success      200  {array}   dto.AuditEntryView
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) Entries(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	entries, err := h.journal.Entries(c.UserContext(), labID, c.Query("entity_type"), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// Verify godoc
// @Summary      Verificar cadena de auditoría
// @Description  Recalcula los hashes encadenados desde la primera entrada del laboratorio.
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "máximo de eslabones (1000 por defecto, 10000 como mucho)"
// @Success      200  {object}  dto.AuditChainResult
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/audit/verify [get]
func (h *AuditHandler) Verify(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	res, err := h.journal.VerifyChain(c.UserContext(), labID, c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
