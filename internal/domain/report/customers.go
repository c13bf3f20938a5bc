package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Niveles de frecuencia de compra.
const (
	TierNone       = "Sin compras"
	TierNew        = "Nuevo"
	TierOccasional = "Ocasional"
	TierRegular    = "Regular"
	TierFrequent   = "Frecuente"
	TierPremium    = "Premium"
)

// tierOrder orden de presentación de los niveles.
var tierOrder = [...]string{TierNone, TierNew, TierOccasional, TierRegular, TierFrequent, TierPremium}

// FrequencyTier clasifica por número de compras: 0, 1, 2-3, 4-7, 8-14, 15+.
func FrequencyTier(purchases int) string {
	switch {
	case purchases <= 0:
		return TierNone
	case purchases == 1:
		return TierNew
	case purchases <= 3:
		return TierOccasional
	case purchases <= 7:
		return TierRegular
	case purchases <= 14:
		return TierFrequent
	default:
		return TierPremium
	}
}

// Estados de ciclo de vida.
const (
	LifecycleNew      = "Nuevo"
	LifecycleActive   = "Activo"
	LifecycleAtRisk   = "En riesgo"
	LifecycleInactive = "Inactivo"
)

// Umbrales de ciclo de vida, en días hasta el fin del rango.
const (
	NewCustomerDays    = 30 // primera compra dentro de esta ventana → Nuevo
	ActiveCustomerDays = 30
	AtRiskCustomerDays = 90
)

// CustomerPurchases compras de un cliente en el rango.
type CustomerPurchases struct {
	CustomerID    string          `json:"customer_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	PurchaseCount int             `json:"purchase_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgTicket     decimal.Decimal `json:"avg_ticket"`
	LastPurchase  *time.Time      `json:"last_purchase"` // nil sin compras
	Tier          string          `json:"tier"`
}

// SegmentShare cantidad de clientes en un nivel.
type SegmentShare struct {
	Tier     string          `json:"tier"`
	Count    int             `json:"count"`
	SharePct decimal.Decimal `json:"share_pct"`
}

// CustomerLifecycleEntry ciclo de vida de un cliente con compras.
type CustomerLifecycleEntry struct {
	CustomerID        string          `json:"customer_id"`
	Name              string          `json:"name"`
	FirstPurchase     time.Time       `json:"first_purchase"`
	LastPurchase      time.Time       `json:"last_purchase"`
	DaysAsCustomer    int             `json:"days_as_customer"`
	PurchaseCount     int             `json:"purchase_count"`
	PurchasesPerMonth decimal.Decimal `json:"purchases_per_month"`
	AvgValue          decimal.Decimal `json:"avg_value"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Status            string          `json:"status"`
}

// RetentionPeriod retención de clientes en un período.
type RetentionPeriod struct {
	Period       string          `json:"period"`
	Active       int             `json:"active"`
	New          int             `json:"new"`
	Returning    int             `json:"returning"`
	Retained     int             `json:"retained"` // activos también en el período anterior
	Lost         int             `json:"lost"`     // activos en el anterior y no en este
	RetentionPct decimal.Decimal `json:"retention_pct"`
}

// SeasonalMonth patrón de compra de un mes del año, sin importar el año.
type SeasonalMonth struct {
	Month        int             `json:"month"`
	Label        string          `json:"label"`
	Customers    int             `json:"customers"`
	Transactions int             `json:"transactions"`
	AvgValue     decimal.Decimal `json:"avg_value"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// customerAgg agregado de compras por cliente.
type customerAgg struct {
	count int
	total decimal.Decimal
	first time.Time
	last  time.Time
}

// purchasesByCustomer agrega las ventas del rango por cliente. Ignora ventas sin cliente.
func purchasesByCustomer(ds *Dataset, r Range) map[string]*customerAgg {
	out := make(map[string]*customerAgg)
	for _, s := range ds.salesIn(r) {
		if s.CustomerID == "" {
			continue
		}
		a, ok := out[s.CustomerID]
		if !ok {
			a = &customerAgg{total: decimal.Zero, first: s.Date}
			out[s.CustomerID] = a
		}
		a.count++
		a.total = a.total.Add(s.Total)
		a.last = s.Date
	}
	return out
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// CustomersWithPurchases todos los clientes con su nivel, descendente por total gastado.
func CustomersWithPurchases(ds *Dataset, r Range) []CustomerPurchases {
	aggs := purchasesByCustomer(ds, r)
	out := make([]CustomerPurchases, 0, len(ds.customers))
	for _, c := range ds.customers {
		cp := CustomerPurchases{
			CustomerID: c.ID,
			Name:       c.Name,
			Email:      c.Email,
			Phone:      c.Phone,
			TotalSpent: decimal.Zero,
			AvgTicket:  decimal.Zero,
			Tier:       TierNone,
		}
		if a, ok := aggs[c.ID]; ok {
			last := a.last
			cp.PurchaseCount = a.count
			cp.TotalSpent = money(a.total)
			cp.AvgTicket = money(safeDiv(a.total, qty(a.count)))
			cp.LastPurchase = &last
			cp.Tier = FrequencyTier(a.count)
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TotalSpent.Equal(out[j].TotalSpent) {
			return out[i].TotalSpent.GreaterThan(out[j].TotalSpent)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// CustomerSegments los seis niveles en orden fijo. Las participaciones suman exactamente
// 100 cuando hay clientes.
func CustomerSegments(ds *Dataset, r Range) []SegmentShare {
	counts := make([]int, len(tierOrder))
	idx := make(map[string]int, len(tierOrder))
	for i, t := range tierOrder {
		idx[t] = i
	}
	for _, cp := range CustomersWithPurchases(ds, r) {
		counts[idx[cp.Tier]]++
	}
	shares := shareOf(counts)
	out := make([]SegmentShare, len(tierOrder))
	for i, t := range tierOrder {
		out[i] = SegmentShare{Tier: t, Count: counts[i], SharePct: shares[i]}
	}
	return out
}

// TopCustomers clientes con al menos una compra, descendente por total, hasta limit.
func TopCustomers(ds *Dataset, r Range, limit int) []CustomerPurchases {
	all := CustomersWithPurchases(ds, r)
	out := make([]CustomerPurchases, 0, len(all))
	for _, cp := range all {
		if cp.PurchaseCount == 0 {
			continue
		}
		out = append(out, cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// CustomerLifecycle ciclo de vida de los clientes con compras en el rango, descendente
// por valor total. La primera compra considera todo el histórico cargado hasta el fin del rango.
func CustomerLifecycle(ds *Dataset, r Range) []CustomerLifecycleEntry {
	aggs := purchasesByCustomer(ds, r)
	firstSeen := make(map[string]time.Time, len(aggs))
	for _, s := range ds.salesBefore(r.Start) {
		if _, ok := aggs[s.CustomerID]; !ok {
			continue
		}
		if _, ok := firstSeen[s.CustomerID]; !ok {
			firstSeen[s.CustomerID] = s.Date
		}
	}

	thirty := decimal.NewFromInt(30)
	out := make([]CustomerLifecycleEntry, 0, len(aggs))
	for id, a := range aggs {
		first := a.first
		if t, ok := firstSeen[id]; ok {
			first = t
		}
		days := daysBetween(first, a.last)
		months := decimal.NewFromInt(int64(days)).Div(thirty)
		if months.LessThan(decimal.NewFromInt(1)) {
			months = decimal.NewFromInt(1)
		}
		out = append(out, CustomerLifecycleEntry{
			CustomerID:        id,
			Name:              ds.customerName(id),
			FirstPurchase:     first,
			LastPurchase:      a.last,
			DaysAsCustomer:    days,
			PurchaseCount:     a.count,
			PurchasesPerMonth: qty(a.count).Div(months).Round(2),
			AvgValue:          money(safeDiv(a.total, qty(a.count))),
			TotalValue:        money(a.total),
			Status:            lifecycleStatus(first, a.last, r.End),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalValue.Equal(out[j].TotalValue) {
			return out[i].TotalValue.GreaterThan(out[j].TotalValue)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

func lifecycleStatus(first, last, asOf time.Time) string {
	recency := daysBetween(last, asOf)
	switch {
	case daysBetween(first, asOf) <= NewCustomerDays:
		return LifecycleNew
	case recency <= ActiveCustomerDays:
		return LifecycleActive
	case recency <= AtRiskCustomerDays:
		return LifecycleAtRisk
	default:
		return LifecycleInactive
	}
}

// RetentionRate retención por período. El primer período se compara contra el período
// completo anterior, por lo que el llamador debe cargar ventas desde PreviousPeriodStart.
// Un cliente es nuevo si no aparece en ninguna venta cargada antes de su período; la
// clasificación es tan fiel como el historial que se cargue.
// RetentionPct = retenidos / activos del período anterior × 100, siempre en [0, 100].
func RetentionRate(ds *Dataset, r Range, g Granularity) []RetentionPeriod {
	start := r.Start.In(ds.loc)
	end := r.End.In(ds.loc)
	cur := bucketStart(start, g)

	prevRange := Range{Start: previousBucket(cur, g), End: cur.Add(-time.Nanosecond)}
	prev := activeCustomers(ds, prevRange)

	seen := make(map[string]struct{})
	for _, s := range ds.salesBefore(start) {
		if s.CustomerID != "" {
			seen[s.CustomerID] = struct{}{}
		}
	}

	out := []RetentionPeriod{}
	for ; !cur.After(end); cur = nextBucket(cur, g) {
		br := Range{Start: cur, End: nextBucket(cur, g).Add(-time.Nanosecond)}
		if br.Start.Before(start) {
			br.Start = start
		}
		if br.End.After(end) {
			br.End = end
		}
		active := activeCustomers(ds, br)

		rp := RetentionPeriod{Period: BucketKey(cur, g), Active: len(active)}
		for id := range active {
			if _, ok := seen[id]; !ok {
				rp.New++
			}
			if _, ok := prev[id]; ok {
				rp.Retained++
			}
		}
		for id := range prev {
			if _, ok := active[id]; !ok {
				rp.Lost++
			}
		}
		rp.Returning = rp.Active - rp.New
		rp.RetentionPct = percentOf(qty(rp.Retained), qty(len(prev)))
		out = append(out, rp)

		for id := range active {
			seen[id] = struct{}{}
		}
		prev = active
	}
	return out
}

func activeCustomers(ds *Dataset, r Range) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range ds.salesIn(r) {
		if s.CustomerID != "" {
			out[s.CustomerID] = struct{}{}
		}
	}
	return out
}

// SeasonalPatterns 12 meses del año (enero a diciembre) acumulando todos los años del rango.
func SeasonalPatterns(ds *Dataset, r Range) []SeasonalMonth {
	out := make([]SeasonalMonth, 12)
	customers := make([]map[string]struct{}, 12)
	for i := range out {
		out[i] = SeasonalMonth{Month: i + 1, Label: monthNames[i], TotalValue: decimal.Zero}
		customers[i] = make(map[string]struct{})
	}
	for _, s := range ds.salesIn(r) {
		i := int(s.Date.Month()) - 1
		out[i].Transactions++
		out[i].TotalValue = out[i].TotalValue.Add(s.Total)
		if s.CustomerID != "" {
			customers[i][s.CustomerID] = struct{}{}
		}
	}
	for i := range out {
		out[i].Customers = len(customers[i])
		out[i].AvgValue = money(safeDiv(out[i].TotalValue, qty(out[i].Transactions)))
		out[i].TotalValue = money(out[i].TotalValue)
	}
	return out
}
