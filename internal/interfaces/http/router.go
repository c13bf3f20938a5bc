package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ReportUC  *reports.ReportUseCase
	JWTSecret string
	JWTIssuer string
	Logger    *logger.Logger
}

// Router registra las rutas de la API. Los reportes son exclusivos del rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/reports",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(entity.RoleAdmin),
	)
	reportHandler := NewReportHandler(deps.ReportUC, deps.Logger)
	protected.Post("/finance/pdf", reportHandler.FinancialSummaryPDF)
	protected.Post("/:domain", reportHandler.Generate)
}
