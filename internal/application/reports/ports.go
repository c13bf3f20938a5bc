package reports

import (
	"context"
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

// ReportCache almacena el JSON ya serializado de un reporte.
// Un fallo de la caché nunca debe impedir generar el reporte: el caso de uso solo lo registra.
type ReportCache interface {
	// Get devuelve el payload y true si la clave existe.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// FinancialPDFGenerator genera el PDF del resumen financiero.
type FinancialPDFGenerator interface {
	FinancialSummaryPDF(ctx context.Context, doc FinancialSummaryDocument) ([]byte, error)
}

// FinancialSummaryDocument datos que necesita el PDF del resumen financiero.
type FinancialSummaryDocument struct {
	Title       string
	Range       report.Range
	Summary     report.FinancialSummaryResult
	Expenses    report.ExpenseBreakdownResult
	GeneratedAt time.Time
}
