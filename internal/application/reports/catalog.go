package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

// Domain familia de reportes expuesta en /api/reports/:domain.
type Domain string

const (
	DomainSales     Domain = "sales"
	DomainFinance   Domain = "finance"
	DomainCustomers Domain = "customers"
	DomainInventory Domain = "inventory"
	DomainSellers   Domain = "sellers"
)

// ParseDomain valida el segmento de la ruta.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalog[d]; !ok {
		return "", fmt.Errorf("%w: dominio %q", domain.ErrUnknownAction, s)
	}
	return d, nil
}

// window ventas que hay que cargar para una acción.
type window int

const (
	windowRange           window = iota // [start, end]
	windowNone                          // solo catálogo, sin ventas
	windowYear                          // año completo de params.year
	windowComparison                    // 2 × days días hasta endDate
	windowCustomerHistory               // historial de clientes antes de start
	windowPreviousMonth                 // desde start - 1 mes
)

type action struct {
	window window
	run    func(uc *ReportUseCase, ds *report.Dataset, p params) any
}

// requiresRange indica si la acción necesita startDate y endDate.
func (a action) requiresRange() bool {
	switch a.window {
	case windowNone, windowYear, windowComparison:
		return false
	}
	return true
}

// fetchRange rango de ventas a cargar; false si la acción no usa ventas.
// historyMonths es la profundidad de windowCustomerHistory.
func (a action) fetchRange(p params, loc *time.Location, historyMonths int) (report.Range, bool) {
	switch a.window {
	case windowNone:
		return report.Range{}, false
	case windowYear:
		start := time.Date(p.year, time.January, 1, 0, 0, 0, 0, loc)
		return report.Range{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}, true
	case windowComparison:
		end := p.endDate
		day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		return report.Range{
			Start: day.AddDate(0, 0, -(2*p.days - 1)),
			End:   day.AddDate(0, 0, 1).Add(-time.Nanosecond),
		}, true
	case windowCustomerHistory:
		// Al menos el período completo anterior, que la retención usa como referencia.
		start := report.ShiftMonths(p.rng.Start, -historyMonths)
		if prev := report.PreviousPeriodStart(p.rng.Start, p.period); prev.Before(start) {
			start = prev
		}
		return report.Range{Start: start, End: p.rng.End}, true
	case windowPreviousMonth:
		return report.Range{Start: report.ShiftMonths(p.rng.Start, -1), End: p.rng.End}, true
	default:
		return p.rng, true
	}
}

// catalog acciones por dominio. Los nombres son los del cliente web existente.
var catalog = map[Domain]map[string]action{
	DomainSales: {
		"getSalesByDateRange": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return salesDTOs(ds, report.SalesByDateRange(ds, p.rng))
		}},
		"getMonthlySalesSummary": {windowYear, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.MonthlySalesSummary(ds, p.year)
		}},
		"getSalesSummary": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SalesSummary(ds, p.rng, p.period)
		}},
		"getSalesByCategory": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SalesByCategory(ds, p.rng)
		}},
		"getSalesTrend": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SalesTrend(ds, p.rng)
		}},
		"getHourlyAnalysis": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.HourlyAnalysis(ds, p.rng)
		}},
		"getWeekdayAnalysis": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.WeekdayAnalysis(ds, p.rng)
		}},
		"getComparativeAnalysis": {windowComparison, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.ComparativeAnalysis(ds, p.endDate, p.days)
		}},
		"getTicketAnalysis": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.TicketAnalysis(ds, p.rng, nil)
		}},
		"getAssociatedProducts": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.AssociatedProducts(ds, p.rng, p.limit)
		}},
		"getProfitMarginAnalysis": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.ProfitMarginAnalysis(ds, p.rng, p.limit)
		}},
		"getPaymentMethodBreakdown": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.PaymentMethodBreakdown(ds, p.rng)
		}},
	},
	DomainFinance: {
		"getProfitAnalysis": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.ProfitAnalysis(ds, p.rng, p.period, uc.finance)
		}},
		"getCashFlowAnalysis": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.CashFlowAnalysis(ds, p.rng, uc.finance)
		}},
		"getCostVsRevenueAnalysis": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.CostVsRevenueAnalysis(ds, p.rng, p.groupBy, uc.finance)
		}},
		"getTaxReport": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.TaxReport(ds, p.rng, p.period, uc.finance)
		}},
		"getExpenseBreakdown": {windowPreviousMonth, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.ExpenseBreakdown(ds, p.rng, uc.finance)
		}},
		"getFinancialSummary": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.FinancialSummary(ds, p.rng, uc.finance)
		}},
	},
	DomainCustomers: {
		"getCustomersWithPurchases": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.CustomersWithPurchases(ds, p.rng)
		}},
		"getCustomerSegments": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.CustomerSegments(ds, p.rng)
		}},
		"getTopCustomers": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.TopCustomers(ds, p.rng, p.limit)
		}},
		"getRFMAnalysis": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.RFMAnalysis(ds, p.rng)
		}},
		"getCustomerLifecycle": {windowCustomerHistory, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.CustomerLifecycle(ds, p.rng)
		}},
		"getRetentionRate": {windowCustomerHistory, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.RetentionRate(ds, p.rng, p.period)
		}},
		"getSeasonalPatterns": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SeasonalPatterns(ds, p.rng)
		}},
	},
	DomainInventory: {
		"getAllInventory": {windowNone, func(_ *ReportUseCase, ds *report.Dataset, _ params) any {
			return report.AllInventory(ds)
		}},
		"getLowStockInventory": {windowNone, func(_ *ReportUseCase, ds *report.Dataset, _ params) any {
			return report.LowStockInventory(ds)
		}},
		"getInventoryValue": {windowNone, func(_ *ReportUseCase, ds *report.Dataset, _ params) any {
			return report.InventoryValue(ds)
		}},
		"getInventoryTurnover": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.InventoryTurnover(ds, p.rng, uc.inventory)
		}},
		"getStockPrediction": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.StockPrediction(ds, p.rng, uc.inventory)
		}},
		"getEarlyAlerts": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.EarlyAlerts(ds, p.rng, uc.inventory)
		}},
		"getExcessInventory": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.ExcessInventory(ds, p.rng, uc.inventory)
		}},
		"getInventoryVelocity": {windowRange, func(uc *ReportUseCase, ds *report.Dataset, p params) any {
			return report.InventoryVelocity(ds, p.rng, uc.inventory)
		}},
	},
	DomainSellers: {
		"getSellerSummary": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SellerSummary(ds, p.rng)
		}},
		"getSellerTrend": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.SellerTrend(ds, p.rng)
		}},
		"getTopProductsBySeller": {windowRange, func(_ *ReportUseCase, ds *report.Dataset, p params) any {
			return report.TopProductsBySeller(ds, p.rng, p.limit)
		}},
	},
}

func lookupAction(d Domain, name string) (action, error) {
	a, ok := catalog[d][name]
	if !ok {
		return action{}, fmt.Errorf("%w: %q en %s", domain.ErrUnknownAction, name, d)
	}
	return a, nil
}

// Actions nombres de las acciones de un dominio, ordenados. Lo usa la documentación y los tests.
func Actions(d Domain) []string {
	names := make([]string, 0, len(catalog[d]))
	for name := range catalog[d] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func salesDTOs(ds *report.Dataset, sales []entity.Sale) []dto.SaleDTO {
	out := make([]dto.SaleDTO, 0, len(sales))
	for _, s := range sales {
		items := make([]dto.SaleItemDTO, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, dto.SaleItemDTO{
				ProductID:   it.ProductID,
				ProductName: ds.ProductName(it.ProductID),
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice.Round(2),
				Subtotal:    it.Subtotal.Round(2),
			})
		}
		out = append(out, dto.SaleDTO{
			ID:            s.ID,
			Date:          s.Date,
			Total:         s.Total.Round(2),
			PaymentMethod: s.PaymentMethod,
			CustomerID:    s.CustomerID,
			CustomerName:  ds.CustomerName(s.CustomerID),
			SellerID:      s.SellerID,
			SellerName:    ds.SellerName(s.SellerID),
			Items:         items,
		})
	}
	return out
}
