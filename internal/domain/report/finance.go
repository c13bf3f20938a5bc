package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// Campos modelados por política (no medidos). Se listan en FinancialSummaryResult.EstimatedFields.
const (
	FieldExpenses   = "total_expenses"
	FieldInvestment = "estimated_investment"
	FieldROI        = "roi"
	FieldLiquidity  = "liquidity"
)

// ProfitPeriod rentabilidad de un período.
type ProfitPeriod struct {
	Period         string          `json:"period"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	GrossMarginPct decimal.Decimal `json:"gross_margin_pct"`
	Expenses       decimal.Decimal `json:"expenses"` // estimación: ExpenseRatio × Revenue
	NetProfit      decimal.Decimal `json:"net_profit"`
	NetMarginPct   decimal.Decimal `json:"net_margin_pct"`
}

// CashFlowDay flujo de caja de un día con ventas.
type CashFlowDay struct {
	Date              string          `json:"date"`
	CashInflow        decimal.Decimal `json:"cash_inflow"`
	CardInflow        decimal.Decimal `json:"card_inflow"`
	TransferInflow    decimal.Decimal `json:"transfer_inflow"`
	OtherInflow       decimal.Decimal `json:"other_inflow"`
	TotalInflow       decimal.Decimal `json:"total_inflow"`
	SupplierPayments  decimal.Decimal `json:"supplier_payments"`  // estimación
	OperatingExpenses decimal.Decimal `json:"operating_expenses"` // estimación
	TotalOutflow      decimal.Decimal `json:"total_outflow"`
	NetFlow           decimal.Decimal `json:"net_flow"`
	RunningBalance    decimal.Decimal `json:"running_balance"`
}

// GroupBy agrupamiento de CostVsRevenueAnalysis.
type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByProduct  GroupBy = "product"
)

// ParseGroupBy vacío equivale a category.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "", GroupByCategory:
		return GroupByCategory, nil
	case GroupByProduct:
		return GroupByProduct, nil
	default:
		return "", fmt.Errorf("%w: groupBy %q", domain.ErrInvalidInput, s)
	}
}

// CostRevenueGroup costo contra ingreso de una categoría o producto.
type CostRevenueGroup struct {
	GroupID        string          `json:"group_id"`
	Name           string          `json:"name"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	Margin         decimal.Decimal `json:"margin"`
	MarginPct      decimal.Decimal `json:"margin_pct"`
	UnitsSold      int             `json:"units_sold"`
	AvgPrice       decimal.Decimal `json:"avg_price"`
	AvgCost        decimal.Decimal `json:"avg_cost"`
	FixedCosts     decimal.Decimal `json:"fixed_costs"`      // estimación: FixedCostRatio × Cost
	BreakEvenUnits decimal.Decimal `json:"break_even_units"` // 0 si AvgPrice <= AvgCost
}

// TaxPeriod impuestos de un período. Los precios de venta incluyen el impuesto.
type TaxPeriod struct {
	Period       string          `json:"period"`
	NetSales     decimal.Decimal `json:"net_sales"`
	TaxableBase  decimal.Decimal `json:"taxable_base"`
	TaxCollected decimal.Decimal `json:"tax_collected"`
	TaxPaid      decimal.Decimal `json:"tax_paid"` // estimación
	TaxBalance   decimal.Decimal `json:"tax_balance"`
	Rate         decimal.Decimal `json:"rate"` // porcentaje
}

// ExpenseItem rubro del desglose de gastos.
type ExpenseItem struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	SharePct decimal.Decimal `json:"share_pct"` // sobre el total de gastos
	TrendPct decimal.Decimal `json:"trend_pct"` // contra el mismo rango un mes antes
}

// ExpenseBreakdownResult desglose estimado de gastos.
type ExpenseBreakdownResult struct {
	Total     decimal.Decimal `json:"total"`
	Items     []ExpenseItem   `json:"items"`
	Estimated bool            `json:"estimated"`
}

// FinancialSummaryResult resumen financiero del rango.
type FinancialSummaryResult struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	GrossProfit         decimal.Decimal `json:"gross_profit"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	NetMarginPct        decimal.Decimal `json:"net_margin_pct"`
	EstimatedInvestment decimal.Decimal `json:"estimated_investment"`
	ROI                 decimal.Decimal `json:"roi"`
	Liquidity           decimal.Decimal `json:"liquidity"`
	SalesCount          int             `json:"sales_count"`
	EstimatedFields     []string        `json:"estimated_fields"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// ProfitAnalysis rentabilidad por período, ascendente por clave. Solo períodos con ventas.
func ProfitAnalysis(ds *Dataset, r Range, g Granularity, p FinancialPolicy) []ProfitPeriod {
	type acc struct{ revenue, cost decimal.Decimal }
	var keys []string
	byKey := make(map[string]*acc)
	for _, s := range ds.salesIn(r) {
		k := BucketKey(s.Date, g)
		a, ok := byKey[k]
		if !ok {
			a = &acc{revenue: decimal.Zero, cost: decimal.Zero}
			byKey[k] = a
			keys = append(keys, k)
		}
		a.revenue = a.revenue.Add(s.Total)
		a.cost = a.cost.Add(ds.saleCost(s))
	}
	sort.Strings(keys)

	out := make([]ProfitPeriod, 0, len(keys))
	for _, k := range keys {
		a := byKey[k]
		out = append(out, profitOf(k, a.revenue, a.cost, p))
	}
	return out
}

func profitOf(period string, revenue, cost decimal.Decimal, p FinancialPolicy) ProfitPeriod {
	gross := revenue.Sub(cost)
	expenses := revenue.Mul(p.ExpenseRatio)
	net := gross.Sub(expenses)
	return ProfitPeriod{
		Period:         period,
		Revenue:        money(revenue),
		Cost:           money(cost),
		GrossProfit:    money(gross),
		GrossMarginPct: percentOf(gross, revenue),
		Expenses:       money(expenses),
		NetProfit:      money(net),
		NetMarginPct:   percentOf(net, revenue),
	}
}

// CashFlowAnalysis flujo diario para los días con ventas; el saldo acumulado parte de 0.
func CashFlowAnalysis(ds *Dataset, r Range, p FinancialPolicy) []CashFlowDay {
	out := []CashFlowDay{}
	for _, s := range ds.salesIn(r) {
		key := s.Date.Format("2006-01-02")
		if n := len(out); n == 0 || out[n-1].Date != key {
			out = append(out, CashFlowDay{
				Date:           key,
				CashInflow:     decimal.Zero,
				CardInflow:     decimal.Zero,
				TransferInflow: decimal.Zero,
				OtherInflow:    decimal.Zero,
			})
		}
		d := &out[len(out)-1]
		switch normalizePaymentMethod(s.PaymentMethod) {
		case entity.PaymentCash:
			d.CashInflow = d.CashInflow.Add(s.Total)
		case entity.PaymentCard:
			d.CardInflow = d.CardInflow.Add(s.Total)
		case entity.PaymentTransfer:
			d.TransferInflow = d.TransferInflow.Add(s.Total)
		default:
			d.OtherInflow = d.OtherInflow.Add(s.Total)
		}
	}

	balance := decimal.Zero
	for i := range out {
		d := &out[i]
		d.TotalInflow = d.CashInflow.Add(d.CardInflow).Add(d.TransferInflow).Add(d.OtherInflow)
		d.SupplierPayments = d.TotalInflow.Mul(p.SupplierPaymentRatio)
		d.OperatingExpenses = d.TotalInflow.Mul(p.ExpenseRatio)
		d.TotalOutflow = d.SupplierPayments.Add(d.OperatingExpenses)
		d.NetFlow = d.TotalInflow.Sub(d.TotalOutflow)
		balance = balance.Add(d.NetFlow)
		d.RunningBalance = balance

		d.CashInflow = money(d.CashInflow)
		d.CardInflow = money(d.CardInflow)
		d.TransferInflow = money(d.TransferInflow)
		d.OtherInflow = money(d.OtherInflow)
		d.TotalInflow = money(d.TotalInflow)
		d.SupplierPayments = money(d.SupplierPayments)
		d.OperatingExpenses = money(d.OperatingExpenses)
		d.TotalOutflow = money(d.TotalOutflow)
		d.NetFlow = money(d.NetFlow)
		d.RunningBalance = money(d.RunningBalance)
	}
	return out
}

// CostVsRevenueAnalysis costo contra ingreso por categoría o producto, descendente por ingreso.
func CostVsRevenueAnalysis(ds *Dataset, r Range, groupBy GroupBy, p FinancialPolicy) []CostRevenueGroup {
	byID := make(map[string]*CostRevenueGroup)
	for _, t := range productTotals(ds, r) {
		prod := ds.product(t.productID)
		id, name := prod.ID, prod.Name
		if groupBy != GroupByProduct {
			id, name = prod.CategoryID, ds.categoryName(prod.CategoryID)
		}
		g, ok := byID[id]
		if !ok {
			g = &CostRevenueGroup{GroupID: id, Name: name, Revenue: decimal.Zero, Cost: decimal.Zero}
			byID[id] = g
		}
		g.Revenue = g.Revenue.Add(t.revenue)
		g.Cost = g.Cost.Add(t.cost)
		g.UnitsSold += t.units
	}

	out := make([]CostRevenueGroup, 0, len(byID))
	for _, g := range byID {
		units := qty(g.UnitsSold)
		avgPrice := safeDiv(g.Revenue, units)
		avgCost := safeDiv(g.Cost, units)
		fixed := g.Cost.Mul(p.FixedCostRatio)
		unitMargin := avgPrice.Sub(avgCost)
		breakEven := decimal.Zero
		if unitMargin.IsPositive() {
			breakEven = fixed.Div(unitMargin)
		}
		margin := g.Revenue.Sub(g.Cost)

		g.Margin = money(margin)
		g.MarginPct = percentOf(margin, g.Revenue)
		g.AvgPrice = money(avgPrice)
		g.AvgCost = money(avgCost)
		g.FixedCosts = money(fixed)
		g.BreakEvenUnits = breakEven.Round(2)
		g.Revenue = money(g.Revenue)
		g.Cost = money(g.Cost)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out
}

// TaxReport impuestos por período, ascendente. La base gravable se despeja del total con IVA incluido.
func TaxReport(ds *Dataset, r Range, g Granularity, p FinancialPolicy) []TaxPeriod {
	var keys []string
	byKey := make(map[string]decimal.Decimal)
	for _, s := range ds.salesIn(r) {
		k := BucketKey(s.Date, g)
		cur, ok := byKey[k]
		if !ok {
			keys = append(keys, k)
			cur = decimal.Zero
		}
		byKey[k] = cur.Add(s.Total)
	}
	sort.Strings(keys)

	onePlusRate := decimal.NewFromInt(1).Add(p.TaxRate)
	out := make([]TaxPeriod, 0, len(keys))
	for _, k := range keys {
		net := byKey[k]
		base := safeDiv(net, onePlusRate)
		collected := net.Sub(base)
		paid := collected.Mul(p.TaxPaidRatio)
		out = append(out, TaxPeriod{
			Period:       k,
			NetSales:     money(net),
			TaxableBase:  money(base),
			TaxCollected: money(collected),
			TaxPaid:      money(paid),
			TaxBalance:   money(collected.Sub(paid)),
			Rate:         p.TaxRate.Mul(hundred).Round(2),
		})
	}
	return out
}

// ExpenseBreakdown gastos estimados por rubro. La tendencia compara contra la misma
// estimación sobre el rango desplazado un mes atrás.
func ExpenseBreakdown(ds *Dataset, r Range, p FinancialPolicy) ExpenseBreakdownResult {
	revenue := revenueIn(ds, r)
	prevRevenue := revenueIn(ds, Range{Start: ShiftMonths(r.Start, -1), End: ShiftMonths(r.End, -1)})

	total := decimal.Zero
	for _, sh := range p.ExpenseShares {
		total = total.Add(revenue.Mul(sh.Ratio))
	}
	res := ExpenseBreakdownResult{
		Total:     money(total),
		Items:     make([]ExpenseItem, 0, len(p.ExpenseShares)),
		Estimated: true,
	}
	for _, sh := range p.ExpenseShares {
		amount := revenue.Mul(sh.Ratio)
		res.Items = append(res.Items, ExpenseItem{
			Category: sh.Name,
			Amount:   money(amount),
			SharePct: percentOf(amount, total),
			TrendPct: growthPct(amount, prevRevenue.Mul(sh.Ratio)),
		})
	}
	return res
}

func revenueIn(ds *Dataset, r Range) decimal.Decimal {
	total := decimal.Zero
	for _, s := range ds.salesIn(r) {
		total = total.Add(s.Total)
	}
	return total
}

// FinancialSummary totales del rango. ROI = NetProfit / (InvestmentRatio × Revenue) × 100.
func FinancialSummary(ds *Dataset, r Range, p FinancialPolicy) FinancialSummaryResult {
	sales := ds.salesIn(r)
	revenue, cost := decimal.Zero, decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
		cost = cost.Add(ds.saleCost(s))
	}
	pr := profitOf("", revenue, cost, p)
	investment := revenue.Mul(p.InvestmentRatio)
	netProfit := revenue.Sub(cost).Sub(revenue.Mul(p.ExpenseRatio))

	return FinancialSummaryResult{
		TotalRevenue:        pr.Revenue,
		TotalCost:           pr.Cost,
		TotalExpenses:       pr.Expenses,
		GrossProfit:         pr.GrossProfit,
		NetProfit:           pr.NetProfit,
		GrossMarginPct:      pr.GrossMarginPct,
		NetMarginPct:        pr.NetMarginPct,
		EstimatedInvestment: money(investment),
		ROI:                 percentOf(netProfit, investment),
		Liquidity:           p.LiquidityRatio.Round(2),
		SalesCount:          len(sales),
		EstimatedFields:     []string{FieldExpenses, FieldInvestment, FieldROI, FieldLiquidity},
	}
}

// MonthRange rango del mes calendario que contiene t, en la zona de t.
func MonthRange(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}
