package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ── Resultados ────────────────────────────────────────────────────────────────

// MonthSummary ventas de un mes del año.
type MonthSummary struct {
	Month   int             `json:"month"`
	Label   string          `json:"label"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SummaryBucket ventas agrupadas por una clave de período o etiqueta.
type SummaryBucket struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CategorySales unidades vendidas por categoría.
type CategorySales struct {
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	UnitsSold  int             `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TrendPoint cantidad de ventas en un día.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourBucket ventas por hora del día.
type HourBucket struct {
	Hour      int             `json:"hour"`
	Count     int             `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
	AvgTicket decimal.Decimal `json:"avg_ticket"`
}

// WeekdayBucket ventas por día de la semana (1 = lunes ... 7 = domingo).
type WeekdayBucket struct {
	Day       int             `json:"day"`
	Name      string          `json:"name"`
	Count     int             `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
	AvgTicket decimal.Decimal `json:"avg_ticket"`
}

// PeriodSnapshot métricas agregadas de un período.
type PeriodSnapshot struct {
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Count     int             `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
	AvgTicket decimal.Decimal `json:"avg_ticket"`
}

// Comparison compara el período reciente contra el anterior de igual duración.
type Comparison struct {
	Current            PeriodSnapshot  `json:"current"`
	Previous           PeriodSnapshot  `json:"previous"`
	CountDelta         int             `json:"count_delta"`
	CountGrowthPct     decimal.Decimal `json:"count_growth_pct"`
	RevenueDelta       decimal.Decimal `json:"revenue_delta"`
	RevenueGrowthPct   decimal.Decimal `json:"revenue_growth_pct"`
	AvgTicketDelta     decimal.Decimal `json:"avg_ticket_delta"`
	AvgTicketGrowthPct decimal.Decimal `json:"avg_ticket_growth_pct"`
}

// TicketBandResult ventas dentro de una franja de ticket.
type TicketBandResult struct {
	Band     string          `json:"band"`
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"` // 0 = sin tope
	Count    int             `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
	SharePct decimal.Decimal `json:"share_pct"`
}

// TicketAnalysisResult distribución de tickets.
type TicketAnalysisResult struct {
	TotalSales int                `json:"total_sales"`
	AvgTicket  decimal.Decimal    `json:"avg_ticket"`
	MinTicket  decimal.Decimal    `json:"min_ticket"`
	MaxTicket  decimal.Decimal    `json:"max_ticket"`
	Bands      []TicketBandResult `json:"bands"`
}

// ProductPair par de productos comprados en la misma venta.
type ProductPair struct {
	ProductAID   string          `json:"product_a_id"`
	ProductAName string          `json:"product_a_name"`
	ProductBID   string          `json:"product_b_id"`
	ProductBName string          `json:"product_b_name"`
	Count        int             `json:"count"`       // ventas que contienen ambos
	SupportPct   decimal.Decimal `json:"support_pct"` // Count / ventas del período * 100
}

// ProductMargin rentabilidad por producto.
type ProductMargin struct {
	Rank        int             `json:"rank"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Margin      decimal.Decimal `json:"margin"`     // Revenue - Cost
	MarginPct   decimal.Decimal `json:"margin_pct"` // Margin / Revenue * 100; 0 sin ingresos
}

// PaymentMethodShare ventas por método de pago.
type PaymentMethodShare struct {
	Method   string          `json:"method"`
	Count    int             `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
	SharePct decimal.Decimal `json:"share_pct"` // participación en ingresos
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// SalesByDateRange ventas completadas del rango en orden ascendente de fecha (copia).
func SalesByDateRange(ds *Dataset, r Range) []entity.Sale {
	in := ds.salesIn(r)
	out := make([]entity.Sale, len(in))
	copy(out, in)
	return out
}

// MonthlySalesSummary siempre 12 entradas, enero a diciembre, en cero si no hubo ventas.
func MonthlySalesSummary(ds *Dataset, year int) []MonthSummary {
	out := make([]MonthSummary, 12)
	for i := range out {
		out[i] = MonthSummary{Month: i + 1, Label: monthNames[i], Revenue: decimal.Zero}
	}
	r := Range{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, ds.loc),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, ds.loc).Add(-time.Nanosecond),
	}
	for _, s := range ds.salesIn(r) {
		m := &out[s.Date.Month()-1]
		m.Count++
		m.Revenue = m.Revenue.Add(s.Total)
	}
	for i := range out {
		out[i].Revenue = money(out[i].Revenue)
	}
	return out
}

// SalesSummary agrupa las ventas del rango con la estrategia de la granularidad:
// weekly por nombre de día (lunes a domingo), monthly por semana del mes (Semana 1 a 5),
// el resto por BucketKey. Todas las entradas se rellenan en cero.
func SalesSummary(ds *Dataset, r Range, g Granularity) []SummaryBucket {
	var keys []string
	var keyOf func(time.Time) string
	switch g {
	case Weekly:
		keys = weekdayNames[:]
		keyOf = WeekdayName
	case Monthly:
		keys = []string{"Semana 1", "Semana 2", "Semana 3", "Semana 4", "Semana 5"}
		keyOf = WeekOfMonthKey
	default:
		keys = PeriodKeys(r, g, ds.loc)
		keyOf = func(t time.Time) string { return BucketKey(t, g) }
	}

	idx := make(map[string]int, len(keys))
	out := make([]SummaryBucket, len(keys))
	for i, k := range keys {
		idx[k] = i
		out[i] = SummaryBucket{Key: k, Revenue: decimal.Zero}
	}
	for _, s := range ds.salesIn(r) {
		k := keyOf(s.Date)
		i, ok := idx[k]
		if !ok {
			// Las claves salen del mismo rango que las ventas; si no coinciden es un error de agrupamiento.
			panic(fmt.Sprintf("report.SalesSummary: venta %s con clave %q fuera de los buckets %s", s.ID, k, g))
		}
		b := &out[i]
		b.Count++
		b.Revenue = b.Revenue.Add(s.Total)
	}
	for i := range out {
		out[i].Revenue = money(out[i].Revenue)
	}
	return out
}

// SalesByCategory unidades vendidas por categoría, descendente; omite categorías sin ventas.
func SalesByCategory(ds *Dataset, r Range) []CategorySales {
	byCat := make(map[string]*CategorySales)
	for _, s := range ds.salesIn(r) {
		for _, it := range s.Items {
			catID := ds.product(it.ProductID).CategoryID
			cs, ok := byCat[catID]
			if !ok {
				cs = &CategorySales{CategoryID: catID, Category: ds.categoryName(catID), Revenue: decimal.Zero}
				byCat[catID] = cs
			}
			cs.UnitsSold += it.Quantity
			cs.Revenue = cs.Revenue.Add(it.Subtotal)
		}
	}
	out := make([]CategorySales, 0, len(byCat))
	for _, cs := range byCat {
		cs.Revenue = money(cs.Revenue)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SalesTrend cantidad de ventas por día; solo días con ventas, ascendente.
func SalesTrend(ds *Dataset, r Range) []TrendPoint {
	out := []TrendPoint{}
	for _, s := range ds.salesIn(r) {
		key := s.Date.Format("2006-01-02")
		if n := len(out); n > 0 && out[n-1].Date == key {
			out[n-1].Count++
			continue
		}
		out = append(out, TrendPoint{Date: key, Count: 1})
	}
	return out
}

// HourlyAnalysis 24 franjas horarias (0-23), incluidas las vacías.
func HourlyAnalysis(ds *Dataset, r Range) []HourBucket {
	out := make([]HourBucket, 24)
	for h := range out {
		out[h] = HourBucket{Hour: h, Revenue: decimal.Zero}
	}
	for _, s := range ds.salesIn(r) {
		b := &out[s.Date.Hour()]
		b.Count++
		b.Revenue = b.Revenue.Add(s.Total)
	}
	for h := range out {
		out[h].AvgTicket = money(safeDiv(out[h].Revenue, qty(out[h].Count)))
		out[h].Revenue = money(out[h].Revenue)
	}
	return out
}

// WeekdayAnalysis 7 días de lunes a domingo, incluidos los vacíos.
func WeekdayAnalysis(ds *Dataset, r Range) []WeekdayBucket {
	out := make([]WeekdayBucket, 7)
	for i := range out {
		out[i] = WeekdayBucket{Day: i + 1, Name: weekdayNames[i], Revenue: decimal.Zero}
	}
	for _, s := range ds.salesIn(r) {
		b := &out[weekdayIndex(s.Date)]
		b.Count++
		b.Revenue = b.Revenue.Add(s.Total)
	}
	for i := range out {
		out[i].AvgTicket = money(safeDiv(out[i].Revenue, qty(out[i].Count)))
		out[i].Revenue = money(out[i].Revenue)
	}
	return out
}

// DefaultComparisonDays duración por defecto de los períodos comparados.
const DefaultComparisonDays = 30

// ComparativeAnalysis compara los `days` días que terminan en endDate contra los `days`
// días inmediatamente anteriores. El crecimiento es 0 cuando el período previo es 0.
func ComparativeAnalysis(ds *Dataset, endDate time.Time, days int) Comparison {
	if days <= 0 {
		days = DefaultComparisonDays
	}
	end := dayEnd(endDate.In(ds.loc))
	curStart := dayStart(end).AddDate(0, 0, -(days - 1))
	prevEnd := curStart.Add(-time.Nanosecond)
	prevStart := curStart.AddDate(0, 0, -days)

	cur := snapshot(ds, Range{Start: curStart, End: end})
	prev := snapshot(ds, Range{Start: prevStart, End: prevEnd})

	return Comparison{
		Current:            cur,
		Previous:           prev,
		CountDelta:         cur.Count - prev.Count,
		CountGrowthPct:     growthPct(qty(cur.Count), qty(prev.Count)),
		RevenueDelta:       money(cur.Revenue.Sub(prev.Revenue)),
		RevenueGrowthPct:   growthPct(cur.Revenue, prev.Revenue),
		AvgTicketDelta:     money(cur.AvgTicket.Sub(prev.AvgTicket)),
		AvgTicketGrowthPct: growthPct(cur.AvgTicket, prev.AvgTicket),
	}
}

func snapshot(ds *Dataset, r Range) PeriodSnapshot {
	sales := ds.salesIn(r)
	revenue := decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
	}
	return PeriodSnapshot{
		Start:     r.Start.Format("2006-01-02"),
		End:       r.End.Format("2006-01-02"),
		Count:     len(sales),
		Revenue:   money(revenue),
		AvgTicket: money(safeDiv(revenue, qty(len(sales)))),
	}
}

// TicketAnalysis distribuye los totales de venta en franjas. Si bands está vacío usa las
// franjas por defecto. Un ticket que no cae en ninguna franja no se cuenta en ellas.
func TicketAnalysis(ds *Dataset, r Range, bands []TicketBand) TicketAnalysisResult {
	if len(bands) == 0 {
		bands = DefaultTicketBands()
	}
	res := TicketAnalysisResult{
		AvgTicket: decimal.Zero,
		MinTicket: decimal.Zero,
		MaxTicket: decimal.Zero,
		Bands:     make([]TicketBandResult, len(bands)),
	}
	for i, b := range bands {
		res.Bands[i] = TicketBandResult{Band: b.Name, Min: b.Min, Max: b.Max, Revenue: decimal.Zero}
	}

	sales := ds.salesIn(r)
	total := decimal.Zero
	for i, s := range sales {
		total = total.Add(s.Total)
		if i == 0 || s.Total.LessThan(res.MinTicket) {
			res.MinTicket = s.Total
		}
		if i == 0 || s.Total.GreaterThan(res.MaxTicket) {
			res.MaxTicket = s.Total
		}
		for j, b := range bands {
			if s.Total.GreaterThanOrEqual(b.Min) && (b.Max.IsZero() || s.Total.LessThan(b.Max)) {
				res.Bands[j].Count++
				res.Bands[j].Revenue = res.Bands[j].Revenue.Add(s.Total)
				break
			}
		}
	}
	res.TotalSales = len(sales)
	res.AvgTicket = money(safeDiv(total, qty(len(sales))))
	res.MinTicket = money(res.MinTicket)
	res.MaxTicket = money(res.MaxTicket)
	for j := range res.Bands {
		res.Bands[j].SharePct = percentOf(qty(res.Bands[j].Count), qty(len(sales)))
		res.Bands[j].Revenue = money(res.Bands[j].Revenue)
	}
	return res
}

// AssociatedProducts pares de productos comprados juntos, descendente por número de
// ventas en común, limitado a limit.
func AssociatedProducts(ds *Dataset, r Range, limit int) []ProductPair {
	type pairKey struct{ a, b string }
	counts := make(map[pairKey]int)

	sales := ds.salesIn(r)
	for _, s := range sales {
		ids := distinctProducts(s)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				counts[pairKey{ids[i], ids[j]}]++
			}
		}
	}

	out := make([]ProductPair, 0, len(counts))
	for k, n := range counts {
		out = append(out, ProductPair{
			ProductAID:   k.a,
			ProductAName: ds.product(k.a).Name,
			ProductBID:   k.b,
			ProductBName: ds.product(k.b).Name,
			Count:        n,
			SupportPct:   percentOf(qty(n), qty(len(sales))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].ProductAID != out[j].ProductAID {
			return out[i].ProductAID < out[j].ProductAID
		}
		return out[i].ProductBID < out[j].ProductBID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// distinctProducts IDs de producto de la venta, sin repetir y ordenados.
func distinctProducts(s entity.Sale) []string {
	seen := make(map[string]struct{}, len(s.Items))
	ids := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// ProfitMarginAnalysis margen por producto, descendente por margen, limitado a limit.
func ProfitMarginAnalysis(ds *Dataset, r Range, limit int) []ProductMargin {
	rows := productTotals(ds, r)
	out := make([]ProductMargin, 0, len(rows))
	for _, t := range rows {
		p := ds.product(t.productID)
		margin := t.revenue.Sub(t.cost)
		out = append(out, ProductMargin{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    ds.categoryName(p.CategoryID),
			UnitsSold:   t.units,
			Revenue:     money(t.revenue),
			Cost:        money(t.cost),
			Margin:      money(margin),
			MarginPct:   percentOf(margin, t.revenue),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Margin.Equal(out[j].Margin) {
			return out[i].Margin.GreaterThan(out[j].Margin)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

type productTotal struct {
	productID string
	units     int
	revenue   decimal.Decimal
	cost      decimal.Decimal
}

// productTotals unidades, ingresos (Σ subtotales) y costo por producto vendido en el rango,
// ordenados por ID de producto.
func productTotals(ds *Dataset, r Range) []productTotal {
	byID := make(map[string]*productTotal)
	for _, s := range ds.salesIn(r) {
		for _, it := range s.Items {
			t, ok := byID[it.ProductID]
			if !ok {
				t = &productTotal{productID: it.ProductID, revenue: decimal.Zero, cost: decimal.Zero}
				byID[it.ProductID] = t
			}
			t.units += it.Quantity
			t.revenue = t.revenue.Add(it.Subtotal)
			t.cost = t.cost.Add(ds.product(it.ProductID).PurchasePrice.Mul(qty(it.Quantity)))
		}
	}
	out := make([]productTotal, 0, len(byID))
	for _, t := range byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

// PaymentMethodBreakdown ventas por método de pago, descendente por ingresos.
func PaymentMethodBreakdown(ds *Dataset, r Range) []PaymentMethodShare {
	byMethod := make(map[string]*PaymentMethodShare)
	total := decimal.Zero
	for _, s := range ds.salesIn(r) {
		m := normalizePaymentMethod(s.PaymentMethod)
		pm, ok := byMethod[m]
		if !ok {
			pm = &PaymentMethodShare{Method: m, Revenue: decimal.Zero}
			byMethod[m] = pm
		}
		pm.Count++
		pm.Revenue = pm.Revenue.Add(s.Total)
		total = total.Add(s.Total)
	}
	out := make([]PaymentMethodShare, 0, len(byMethod))
	for _, pm := range byMethod {
		pm.SharePct = percentOf(pm.Revenue, total)
		pm.Revenue = money(pm.Revenue)
		out = append(out, *pm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// paymentOther agrupa métodos de pago no reconocidos.
const paymentOther = "OTHER"

func normalizePaymentMethod(m string) string {
	switch m {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer:
		return m
	default:
		return paymentOther
	}
}
