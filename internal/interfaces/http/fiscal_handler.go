package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

const contentTypePDF = "application/pdf"

// FiscalHandler descargas fiscales: FEC, rapports PDF y avoirs.
type FiscalHandler struct {
	fecUC    *fiscal.FECUseCase
	reportUC *fiscal.ReportUseCase
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(fecUC *fiscal.FECUseCase, reportUC *fiscal.ReportUseCase) *FiscalHandler {
	return &FiscalHandler{fecUC: fecUC, reportUC: reportUC}
}

// parsePeriod lee ?start=AAAA-MM-DD&end=AAAA-MM-DD.
func parsePeriod(c *fiber.Ctx) (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, c.Query("start"))
	if err != nil {
		return start, end, fmt.Errorf("start debe tener formato AAAA-MM-DD")
	}
	end, err = time.Parse(time.DateOnly, c.Query("end"))
	if err != nil {
		return start, end, fmt.Errorf("end debe tener formato AAAA-MM-DD")
	}
	return start, end, nil
}

func sendFile(c *fiber.Ctx, name, contentType string, content []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(content)
}

// FEC godoc
// @Summary      Exportar FEC
// @Description  Fichier des Écritures Comptables del periodo. format: txt (por defecto), xml o xlsx.
// @Tags         fiscal
// @Produce      plain
// @Produce      xml
// @Security     BearerAuth
// @Param        start   query  string  true   "inicio AAAA-MM-DD"
// @Param        end     query  string  true   "fin AAAA-MM-DD"
// @Param        format  query  string  false  "txt | xml | xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/fec [get]
func (h *FiscalHandler) FEC(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	file, err := h.fecUC.Export(c.UserContext(), labID, start, end, c.Query("format", dto.FECFormatTXT))
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-FEC-Lines", strconv.Itoa(file.Lines))
	if file.Digest != "" {
		c.Set("X-Content-Digest", "sha-256="+file.Digest)
	}
	return sendFile(c, file.FileName, file.ContentType, file.Content)
}

// PeriodReport godoc
// @Summary      Rapport fiscal del periodo (PDF)
// @Tags         fiscal
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        start  query  string  true   "inicio AAAA-MM-DD"
// @Param        end    query  string  true   "fin AAAA-MM-DD"
// @Param        type   query  string  false  "month | quarter | year"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/fiscal/reports/period [get]
func (h *FiscalHandler) PeriodReport(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	file, err := h.reportUC.FiscalReportPDF(c.UserContext(), labID, start, end, c.Query("type"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, file.FileName, contentTypePDF, file.Content)
}

// AnnualVAT godoc
// @Summary      Récapitulatif TVA anual (PDF)
// @Tags         fiscal
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        year  path  int  true  "año"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/fiscal/reports/vat/{year} [get]
func (h *FiscalHandler) AnnualVAT(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	year, err := c.ParamsInt("year")
	if err != nil {
		return badRequest(c, "VALIDATION", "año inválido")
	}
	file, err := h.reportUC.AnnualVATPDF(c.UserContext(), labID, year)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, file.FileName, contentTypePDF, file.Content)
}

// CreditNotePDF godoc
// @Summary      PDF del avoir
// @Tags         fiscal
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del avoir"
// @Success      200  {file}    file
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-notes/{id}/pdf [get]
func (h *FiscalHandler) CreditNotePDF(c *fiber.Ctx) error {
	labID := GetLaboratoryID(c)
	if labID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "VALIDATION", "id requerido")
	}
	file, err := h.reportUC.CreditNotePDF(c.UserContext(), labID, id)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, file.FileName, contentTypePDF, file.Content)
}
