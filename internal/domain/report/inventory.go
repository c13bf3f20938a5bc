package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Estados de stock.
const (
	StockOut    = "Agotado"
	StockLow    = "Bajo"
	StockNormal = "Normal"
)

// Clases de velocidad de venta.
const (
	VelocityFast   = "Rápido"
	VelocityMedium = "Medio"
	VelocitySlow   = "Lento"
	VelocityNone   = "Sin movimiento"
)

// Severidad de alerta temprana.
const (
	SeverityCritical = "Crítica"
	SeverityHigh     = "Alta"
	SeverityMedium   = "Media"
)

// InventoryItem producto con su estado de stock.
type InventoryItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockValue    decimal.Decimal `json:"stock_value"` // Stock × PurchasePrice
	Status        string          `json:"status"`
}

// CategoryValue valor de inventario de una categoría.
type CategoryValue struct {
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	Units      int             `json:"units"`
	Value      decimal.Decimal `json:"value"`
	SharePct   decimal.Decimal `json:"share_pct"`
}

// InventoryValueResult valoración del inventario actual.
type InventoryValueResult struct {
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalUnits    int             `json:"total_units"`
	ProductCount  int             `json:"product_count"`
	LowStockCount int             `json:"low_stock_count"`
	OutOfStock    int             `json:"out_of_stock_count"`
	ByCategory    []CategoryValue `json:"by_category"`
}

// TurnoverItem rotación de un producto en el rango.
type TurnoverItem struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitsSold    int             `json:"units_sold"`
	Stock        int             `json:"stock"`
	TurnoverRate decimal.Decimal `json:"turnover_rate"`
}

// StockForecast predicción de agotamiento de un producto.
type StockForecast struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Stock          int             `json:"stock"`
	UnitsSold      int             `json:"units_sold"`
	DailyVelocity  decimal.Decimal `json:"daily_velocity"`
	DaysUntilOut   *int            `json:"days_until_out"`   // nil sin ventas en el rango
	PredictedOutOn *string         `json:"predicted_out_on"` // YYYY-MM-DD
}

// StockAlert alerta temprana de reposición.
type StockAlert struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	DailyVelocity decimal.Decimal `json:"daily_velocity"`
	DaysUntilOut  *int            `json:"days_until_out"`
	Severity      string          `json:"severity"`
	SuggestedQty  int             `json:"suggested_qty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// ExcessItem producto con stock por encima de la cobertura objetivo.
type ExcessItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Stock         int             `json:"stock"`
	DailyVelocity decimal.Decimal `json:"daily_velocity"`
	CoverageDays  *int            `json:"coverage_days"` // nil sin ventas
	ExcessUnits   int             `json:"excess_units"`
	ExcessValue   decimal.Decimal `json:"excess_value"`
}

// VelocityItem clase de velocidad de un producto.
type VelocityItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	UnitsSold     int             `json:"units_sold"`
	DailyVelocity decimal.Decimal `json:"daily_velocity"`
	Class         string          `json:"class"`
}

func stockStatus(stock, minStock int) string {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= minStock:
		return StockLow
	default:
		return StockNormal
	}
}

// unitsSoldByProduct unidades vendidas por producto en el rango.
func unitsSoldByProduct(ds *Dataset, r Range) map[string]int {
	out := make(map[string]int)
	for _, s := range ds.salesIn(r) {
		for _, it := range s.Items {
			out[it.ProductID] += it.Quantity
		}
	}
	return out
}

// dailyVelocity unidades por día calendario del rango.
func dailyVelocity(units int, r Range) decimal.Decimal {
	return qty(units).Div(qty(r.Days()))
}

// daysOfStock días que cubre el stock a la velocidad dada; nil si la velocidad es 0.
func daysOfStock(stock int, velocity decimal.Decimal) *int {
	if !velocity.IsPositive() {
		return nil
	}
	d := int(qty(stock).Div(velocity).IntPart())
	return &d
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// AllInventory todos los productos con su estado, en el orden del catálogo.
func AllInventory(ds *Dataset) []InventoryItem {
	out := make([]InventoryItem, 0, len(ds.products))
	for _, p := range ds.products {
		out = append(out, InventoryItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Category:      ds.categoryName(p.CategoryID),
			Stock:         p.Stock,
			MinStock:      p.MinStock,
			PurchasePrice: money(p.PurchasePrice),
			SellingPrice:  money(p.SellingPrice),
			StockValue:    money(p.PurchasePrice.Mul(qty(p.Stock))),
			Status:        stockStatus(p.Stock, p.MinStock),
		})
	}
	return out
}

// LowStockInventory productos con stock <= stock mínimo, ascendente por stock.
func LowStockInventory(ds *Dataset) []InventoryItem {
	out := []InventoryItem{}
	for _, it := range AllInventory(ds) {
		if it.Stock <= it.MinStock {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// InventoryValue valor total (Σ precio de compra × stock) con desglose por categoría.
func InventoryValue(ds *Dataset) InventoryValueResult {
	res := InventoryValueResult{TotalValue: decimal.Zero, ByCategory: []CategoryValue{}}
	byCat := make(map[string]*CategoryValue)
	for _, p := range ds.products {
		value := p.PurchasePrice.Mul(qty(p.Stock))
		res.TotalValue = res.TotalValue.Add(value)
		res.TotalUnits += p.Stock
		res.ProductCount++
		switch stockStatus(p.Stock, p.MinStock) {
		case StockOut:
			res.OutOfStock++
			res.LowStockCount++
		case StockLow:
			res.LowStockCount++
		}

		cv, ok := byCat[p.CategoryID]
		if !ok {
			cv = &CategoryValue{CategoryID: p.CategoryID, Category: ds.categoryName(p.CategoryID), Value: decimal.Zero}
			byCat[p.CategoryID] = cv
		}
		cv.Units += p.Stock
		cv.Value = cv.Value.Add(value)
	}
	for _, cv := range byCat {
		cv.SharePct = percentOf(cv.Value, res.TotalValue)
		cv.Value = money(cv.Value)
		res.ByCategory = append(res.ByCategory, *cv)
	}
	sort.Slice(res.ByCategory, func(i, j int) bool {
		a, b := res.ByCategory[i], res.ByCategory[j]
		if !a.Value.Equal(b.Value) {
			return a.Value.GreaterThan(b.Value)
		}
		return a.CategoryID < b.CategoryID
	})
	res.TotalValue = money(res.TotalValue)
	return res
}

// InventoryTurnover unidades vendidas / stock actual, descendente. Con stock 0 se divide
// por TurnoverEpsilon, de modo que el resultado es grande pero finito.
func InventoryTurnover(ds *Dataset, r Range, p InventoryPolicy) []TurnoverItem {
	sold := unitsSoldByProduct(ds, r)
	out := make([]TurnoverItem, 0, len(ds.products))
	for _, prod := range ds.products {
		stock := qty(prod.Stock)
		if stock.LessThan(p.TurnoverEpsilon) {
			stock = p.TurnoverEpsilon
		}
		out = append(out, TurnoverItem{
			ProductID:    prod.ID,
			Name:         prod.Name,
			Category:     ds.categoryName(prod.CategoryID),
			UnitsSold:    sold[prod.ID],
			Stock:        prod.Stock,
			TurnoverRate: safeDiv(qty(sold[prod.ID]), stock).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TurnoverRate.GreaterThan(out[j].TurnoverRate)
	})
	return out
}

// StockPrediction días hasta agotamiento a la velocidad diaria del rango, ascendente por
// días restantes; productos sin ventas al final.
func StockPrediction(ds *Dataset, r Range, p InventoryPolicy) []StockForecast {
	sold := unitsSoldByProduct(ds, r)
	asOf := dayStart(r.End.In(ds.loc))
	out := make([]StockForecast, 0, len(ds.products))
	for _, prod := range ds.products {
		v := dailyVelocity(sold[prod.ID], r)
		f := StockForecast{
			ProductID:     prod.ID,
			Name:          prod.Name,
			Stock:         prod.Stock,
			UnitsSold:     sold[prod.ID],
			DailyVelocity: v.Round(2),
			DaysUntilOut:  daysOfStock(prod.Stock, v),
		}
		if f.DaysUntilOut != nil {
			d := asOf.AddDate(0, 0, *f.DaysUntilOut).Format("2006-01-02")
			f.PredictedOutOn = &d
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessDays(out[i].DaysUntilOut, out[j].DaysUntilOut) })
	return out
}

// lessDays ordena nil (sin velocidad) al final.
func lessDays(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// EarlyAlerts productos cuyo agotamiento previsto cae dentro de AlertWindowDays o cuyo
// stock ya está en el mínimo. La cantidad sugerida cubre CoverageDays a la velocidad
// actual y nunca deja el stock por debajo del mínimo.
func EarlyAlerts(ds *Dataset, r Range, p InventoryPolicy) []StockAlert {
	sold := unitsSoldByProduct(ds, r)
	out := []StockAlert{}
	for _, prod := range ds.products {
		v := dailyVelocity(sold[prod.ID], r)
		days := daysOfStock(prod.Stock, v)
		inWindow := days != nil && *days <= p.AlertWindowDays
		if !inWindow && prod.Stock > prod.MinStock {
			continue
		}

		target := v.Mul(qty(p.CoverageDays)).Ceil()
		if minimum := qty(prod.MinStock); target.LessThan(minimum) {
			target = minimum
		}
		suggested := int(target.Sub(qty(prod.Stock)).IntPart())
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, StockAlert{
			ProductID:     prod.ID,
			Name:          prod.Name,
			Stock:         prod.Stock,
			MinStock:      prod.MinStock,
			DailyVelocity: v.Round(2),
			DaysUntilOut:  days,
			Severity:      alertSeverity(prod.Stock, days, p),
			SuggestedQty:  suggested,
			EstimatedCost: money(prod.PurchasePrice.Mul(qty(suggested))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := severityRank(out[i].Severity), severityRank(out[j].Severity)
		if si != sj {
			return si < sj
		}
		return lessDays(out[i].DaysUntilOut, out[j].DaysUntilOut)
	})
	return out
}

func alertSeverity(stock int, days *int, p InventoryPolicy) string {
	switch {
	case stock <= 0 || (days != nil && *days <= p.CriticalDays):
		return SeverityCritical
	case days != nil && *days <= p.HighDays:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func severityRank(s string) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	default:
		return 2
	}
}

// ExcessInventory productos con stock mayor a velocidad × ExcessCoverageDays, o con stock
// y sin ventas en el rango. Descendente por valor del exceso.
func ExcessInventory(ds *Dataset, r Range, p InventoryPolicy) []ExcessItem {
	sold := unitsSoldByProduct(ds, r)
	out := []ExcessItem{}
	for _, prod := range ds.products {
		if prod.Stock <= 0 {
			continue
		}
		v := dailyVelocity(sold[prod.ID], r)
		limit := int(v.Mul(qty(p.ExcessCoverageDays)).Ceil().IntPart())
		excess := prod.Stock - limit
		if excess <= 0 {
			continue
		}
		out = append(out, ExcessItem{
			ProductID:     prod.ID,
			Name:          prod.Name,
			Stock:         prod.Stock,
			DailyVelocity: v.Round(2),
			CoverageDays:  daysOfStock(prod.Stock, v),
			ExcessUnits:   excess,
			ExcessValue:   money(prod.PurchasePrice.Mul(qty(excess))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExcessValue.GreaterThan(out[j].ExcessValue) })
	return out
}

// InventoryVelocity clase de velocidad por producto, descendente por velocidad.
func InventoryVelocity(ds *Dataset, r Range, p InventoryPolicy) []VelocityItem {
	sold := unitsSoldByProduct(ds, r)
	out := make([]VelocityItem, 0, len(ds.products))
	for _, prod := range ds.products {
		v := dailyVelocity(sold[prod.ID], r)
		out = append(out, VelocityItem{
			ProductID:     prod.ID,
			Name:          prod.Name,
			Category:      ds.categoryName(prod.CategoryID),
			UnitsSold:     sold[prod.ID],
			DailyVelocity: v.Round(2),
			Class:         velocityClass(v, p),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DailyVelocity.GreaterThan(out[j].DailyVelocity) })
	return out
}

func velocityClass(v decimal.Decimal, p InventoryPolicy) string {
	switch {
	case !v.IsPositive():
		return VelocityNone
	case v.GreaterThanOrEqual(p.FastVelocity):
		return VelocityFast
	case v.GreaterThanOrEqual(p.MediumVelocity):
		return VelocityMedium
	default:
		return VelocitySlow
	}
}
