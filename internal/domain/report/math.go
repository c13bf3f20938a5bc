package report

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func qty(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// safeDiv devuelve a / b, o cero si b es cero.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// percentOf devuelve part / total * 100 redondeado a 2 decimales (0 si total es cero).
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	return safeDiv(part, total).Mul(hundred).Round(2)
}

// growthPct variación porcentual de previous a current; 0 si previous es cero.
func growthPct(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// dayStart medianoche del día calendario de t en su propia zona.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayEnd último instante del día calendario de t.
func dayEnd(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// daysBetween días calendario entre a y b (b - a), independiente de cambios de horario.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// shareOf reparte 100 entre counts con el método del mayor residuo, a 2 decimales,
// de modo que la suma sea exactamente 100 cuando total > 0.
func shareOf(counts []int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(counts))
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}
	// Trabajar en centésimas de punto porcentual: 100.00% = 10000 unidades.
	const units = 10000
	type rem struct {
		idx int
		r   int
	}
	assigned := 0
	rems := make([]rem, len(counts))
	for i, c := range counts {
		exact := c * units
		out[i] = decimal.New(int64(exact/total), -2)
		assigned += exact / total
		rems[i] = rem{idx: i, r: exact % total}
	}
	// Mayor residuo primero; a igual residuo, el índice menor.
	for left := units - assigned; left > 0; left-- {
		best := -1
		for i, r := range rems {
			if r.r < 0 {
				continue
			}
			if best == -1 || r.r > rems[best].r {
				best = i
			}
		}
		idx := rems[best].idx
		out[idx] = out[idx].Add(decimal.New(1, -2))
		rems[best].r = -1
	}
	return out
}
