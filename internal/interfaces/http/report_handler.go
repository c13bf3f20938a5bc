package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// ReportHandler maneja los endpoints de reportes del panel administrativo.
type ReportHandler struct {
	uc  *reports.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.ReportUseCase, log *logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportHandler{uc: uc, log: log.Component("http.reports")}
}

// Generate godoc
// @Summary      Genera un reporte
// @Description  Ejecuta la acción indicada (ej. getProfitAnalysis) sobre el dominio de la ruta. Fechas YYYY-MM-DD en la zona horaria configurada. Solo administradores.
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        domain  path  string             true  "sales | finance | customers | inventory | sellers"
// @Param        body    body  dto.ReportRequest  true  "Acción y parámetros"
// @Success      200  {object}  dto.ReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/{domain} [post]
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_BODY", Message: "cuerpo JSON inválido",
		})
	}

	resp, err := h.uc.Generate(c.Context(), c.Params("domain"), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// FinancialSummaryPDF godoc
// @Summary      Resumen financiero en PDF
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.ReportRequest  true  "startDate y endDate"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/finance/pdf [post]
func (h *ReportHandler) FinancialSummaryPDF(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_BODY", Message: "cuerpo JSON inválido",
		})
	}

	doc, err := h.uc.FinancialSummaryPDF(c.Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Send(doc.Content)
}

// writeError traduce los errores del caso de uso a respuestas HTTP.
func (h *ReportHandler) writeError(c *fiber.Ctx, err error) error {
	var verr *reports.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "parámetros inválidos", Details: verr.Details,
		})
	case errors.Is(err, domain.ErrUnknownAction):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_ACTION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidLimit):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDataIntegrity):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "DATA_INTEGRITY", Message: err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error generando reporte")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: "error interno generando el reporte",
		})
	}
}
