package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Segmentos RFM.
const (
	SegmentChampions      = "Campeones"
	SegmentLoyal          = "Leales"
	SegmentPotential      = "Potenciales"
	SegmentAtRisk         = "En riesgo"
	SegmentNeedsAttention = "Necesita atención"
	SegmentNew            = "Nuevos"
	SegmentDormant        = "Dormidos"
	SegmentOccasional     = "Ocasionales"
)

// Umbrales de recencia (días desde la última compra) para las puntuaciones 5, 4, 3 y 2.
// Más de RecencyScore2Days puntúa 1.
const (
	RecencyScore5Days = 7
	RecencyScore4Days = 30
	RecencyScore3Days = 90
	RecencyScore2Days = 180
)

// Umbrales de frecuencia (compras) para las puntuaciones 5, 4, 3 y 2, alineados con
// los niveles Premium, Frecuente, Regular y Ocasional.
const (
	FrequencyScore5 = 15
	FrequencyScore4 = 8
	FrequencyScore3 = 4
	FrequencyScore2 = 2
)

// RFMEntry puntuación RFM de un cliente con compras.
type RFMEntry struct {
	CustomerID  string          `json:"customer_id"`
	Name        string          `json:"name"`
	RecencyDays int             `json:"recency_days"`
	Frequency   int             `json:"frequency"`
	Monetary    decimal.Decimal `json:"monetary"`
	RScore      int             `json:"r_score"`
	FScore      int             `json:"f_score"`
	MScore      int             `json:"m_score"`
	Score       string          `json:"score"` // ej: "545"
	Segment     string          `json:"segment"`
}

func recencyScore(days int) int {
	switch {
	case days <= RecencyScore5Days:
		return 5
	case days <= RecencyScore4Days:
		return 4
	case days <= RecencyScore3Days:
		return 3
	case days <= RecencyScore2Days:
		return 2
	default:
		return 1
	}
}

func frequencyScore(n int) int {
	switch {
	case n >= FrequencyScore5:
		return 5
	case n >= FrequencyScore4:
		return 4
	case n >= FrequencyScore3:
		return 3
	case n >= FrequencyScore2:
		return 2
	default:
		return 1
	}
}

// monetaryScores puntúa por rango percentil entre compradores: 1 + 4·menores/(n-1).
// Con un solo comprador la puntuación es 3.
func monetaryScores(values []decimal.Decimal) []int {
	n := len(values)
	out := make([]int, n)
	if n == 1 {
		out[0] = 3
		return out
	}
	for i, v := range values {
		less := 0
		for _, w := range values {
			if w.LessThan(v) {
				less++
			}
		}
		out[i] = 1 + less*4/(n-1)
	}
	return out
}

// rfmSegment aplica las reglas en orden; la primera que cumple define el segmento.
func rfmSegment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case f >= 4 && r >= 3:
		return SegmentLoyal
	case r >= 4 && f == 1:
		return SegmentNew
	case r >= 4 && f <= 3:
		return SegmentPotential
	case r <= 2 && f >= 3:
		return SegmentAtRisk
	case r == 1 && f <= 2:
		return SegmentDormant
	case r == 3 && f <= 3:
		return SegmentNeedsAttention
	default:
		return SegmentOccasional
	}
}

// RFMAnalysis puntuación RFM de los clientes con compras en el rango. La recencia se mide
// hasta r.End, no hasta la hora actual. Orden: descendente por monto, luego por ID.
func RFMAnalysis(ds *Dataset, r Range) []RFMEntry {
	aggs := purchasesByCustomer(ds, r)
	ids := make([]string, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	monetary := make([]decimal.Decimal, len(ids))
	for i, id := range ids {
		monetary[i] = aggs[id].total
	}
	mScores := monetaryScores(monetary)

	end := r.End.In(ds.loc)
	out := make([]RFMEntry, len(ids))
	for i, id := range ids {
		a := aggs[id]
		recency := daysBetween(a.last, end)
		rs, fs, ms := recencyScore(recency), frequencyScore(a.count), mScores[i]
		out[i] = RFMEntry{
			CustomerID:  id,
			Name:        ds.customerName(id),
			RecencyDays: recency,
			Frequency:   a.count,
			Monetary:    money(a.total),
			RScore:      rs,
			FScore:      fs,
			MScore:      ms,
			Score:       fmt.Sprintf("%d%d%d", rs, fs, ms),
			Segment:     rfmSegment(rs, fs, ms),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Monetary.GreaterThan(out[j].Monetary)
	})
	return out
}
