package reports

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

// DefaultLimit tope de los rankings cuando la petición no trae limit.
const DefaultLimit = 10

// DefaultCustomerHistoryMonths meses de historial previo que se cargan para los reportes
// que distinguen clientes nuevos de recurrentes.
const DefaultCustomerHistoryMonths = 24

const dateLayout = "2006-01-02"

// ValidationError errores de campo del cuerpo de la petición. Envuelve domain.ErrInvalidInput.
type ValidationError struct {
	Details []dto.FieldDetail
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("%s: %s", domain.ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// newValidator validador que reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	details := make([]dto.FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.FieldDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return &ValidationError{Details: details}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obligatorio"
	case "datetime":
		return "formato de fecha esperado YYYY-MM-DD"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		return "debe ser al menos " + fe.Param()
	case "max":
		return "debe ser como máximo " + fe.Param()
	default:
		return "valor inválido"
	}
}

// params parámetros ya validados y normalizados de una petición.
type params struct {
	rng      report.Range
	hasRange bool
	period   report.Granularity
	limit    int
	groupBy  report.GroupBy
	year     int
	days     int
	endDate  time.Time // fin del período comparativo
}

// parseParams normaliza el cuerpo y convierte las fechas a la zona horaria de reportes.
// requireRange exige startDate y endDate.
// El cuerpo ya pasó por el validador.
func parseParams(req dto.ReportRequest, requireRange bool, loc *time.Location, now time.Time) (params, error) {
	var p params
	start, err := parseDay(req.StartDate, loc)
	if err != nil {
		return params{}, err
	}
	end, err := parseDay(req.EndDate, loc)
	if err != nil {
		return params{}, err
	}
	if !end.IsZero() {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	// Sin requireRange el rango es opcional: solo cuenta si vienen ambas fechas.
	// endDate sola sigue sirviendo como fecha de corte (comparativo).
	if requireRange || (!start.IsZero() && !end.IsZero()) {
		if p.rng, err = report.NewRange(start, end); err != nil {
			return params{}, err
		}
		p.hasRange = true
	}

	if p.period, err = report.ParseGranularity(req.Period, report.Monthly); err != nil {
		return params{}, err
	}
	if p.groupBy, err = report.ParseGroupBy(req.GroupBy); err != nil {
		return params{}, err
	}

	p.limit = DefaultLimit
	if req.Limit != nil {
		if err := report.ValidateLimit(*req.Limit); err != nil {
			return params{}, err
		}
		p.limit = *req.Limit
	}

	now = now.In(loc)
	p.year = req.Year
	if p.year == 0 {
		p.year = now.Year()
	}
	p.days = req.Days
	if p.days == 0 {
		p.days = report.DefaultComparisonDays
	}
	p.endDate = now
	if !end.IsZero() {
		p.endDate = end
	}
	return p, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q", domain.ErrInvalidDateRange, s)
	}
	return t, nil
}

// cacheKey identifica el reporte: reports:<dominio>:<acción>:<parámetros>.
// Solo incluye los parámetros que influyen en el resultado.
func cacheKey(d Domain, action string, p params) string {
	var b strings.Builder
	if p.hasRange {
		b.WriteString(p.rng.Start.Format(dateLayout))
		b.WriteByte('_')
		b.WriteString(p.rng.End.Format(dateLayout))
	}
	fmt.Fprintf(&b, "|%s|%d|%s|%d|%d", p.period, p.limit, p.groupBy, p.year, p.days)
	if !p.hasRange {
		// Reportes sin rango que dependen de "hoy" (comparativo sin endDate).
		b.WriteString("|" + p.endDate.Format(dateLayout))
	}
	return fmt.Sprintf("reports:%s:%s:%s", d, action, b.String())
}
