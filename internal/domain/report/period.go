package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain"
)

// Granularity granularidad de agrupamiento temporal.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// ParseGranularity convierte el parámetro de la petición; vacío equivale a def.
func ParseGranularity(s string, def Granularity) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return def, nil
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: granularidad %q", domain.ErrInvalidInput, s)
	}
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Lunes primero.
var weekdayNames = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// MonthName nombre en español del mes (1-12).
func MonthName(m time.Month) string { return monthNames[m-1] }

// weekdayIndex 0 = lunes ... 6 = domingo.
func weekdayIndex(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

// WeekdayName nombre en español del día de la semana.
func WeekdayName(t time.Time) string { return weekdayNames[weekdayIndex(t)] }

// WeekOfMonth semana del mes (1-5): días 1-7 → 1, 8-14 → 2, ...
func WeekOfMonth(t time.Time) int { return (t.Day()-1)/7 + 1 }

// WeekOfMonthKey clave de semana del mes, ej: "Semana 2".
func WeekOfMonthKey(t time.Time) string { return fmt.Sprintf("Semana %d", WeekOfMonth(t)) }

// BucketKey clave de período para t:
// daily YYYY-MM-DD, weekly YYYY-Www (ISO), monthly YYYY-MM, quarterly YYYY-Qn, yearly YYYY.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case Daily:
		return t.Format("2006-01-02")
	case Weekly:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())+2)/3)
	case Yearly:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return t.Format("2006-01")
	}
}

// bucketStart inicio del período que contiene t.
func bucketStart(t time.Time, g Granularity) time.Time {
	d := dayStart(t)
	switch g {
	case Daily:
		return d
	case Weekly:
		return d.AddDate(0, 0, -weekdayIndex(d))
	case Quarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
	case Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
}

// nextBucket inicio del período siguiente al que comienza en start.
func nextBucket(start time.Time, g Granularity) time.Time {
	switch g {
	case Daily:
		return start.AddDate(0, 0, 1)
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// previousBucket inicio del período anterior al que comienza en start.
func previousBucket(start time.Time, g Granularity) time.Time {
	switch g {
	case Daily:
		return start.AddDate(0, 0, -1)
	case Weekly:
		return start.AddDate(0, 0, -7)
	case Quarterly:
		return start.AddDate(0, -3, 0)
	case Yearly:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, -1, 0)
	}
}

// PeriodKeys todas las claves de período que toca el rango, en orden ascendente.
func PeriodKeys(r Range, g Granularity, loc *time.Location) []string {
	var keys []string
	end := r.End.In(loc)
	for cur := bucketStart(r.Start.In(loc), g); !cur.After(end); cur = nextBucket(cur, g) {
		keys = append(keys, BucketKey(cur, g))
	}
	return keys
}

// PreviousPeriodStart inicio del período anterior al que contiene t; lo usa el llamador
// para ampliar la carga de datos cuando un reporte compara contra el período previo.
func PreviousPeriodStart(t time.Time, g Granularity) time.Time {
	return previousBucket(bucketStart(t, g), g)
}

// ShiftMonths desplaza t n meses conservando la hora. Si el día no existe en el mes
// destino se usa el último día de ese mes (31 de marzo - 1 mes = 29 de febrero).
func ShiftMonths(t time.Time, n int) time.Time {
	target := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	return time.Date(target.Year(), target.Month(), min(t.Day(), lastDay),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
