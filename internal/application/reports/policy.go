package reports

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reportes-api/internal/domain/report"
	"github.com/jhoicas/Reportes-api/pkg/config"
)

// FinancialPolicyFromConfig aplica sobre los valores por defecto las fracciones
// definidas en REPORTS_*. Si cambia la fracción de gastos, los rubros se reescalan
// para que su suma siga siendo igual a ExpenseRatio.
func FinancialPolicyFromConfig(c config.ReportsConfig) report.FinancialPolicy {
	p := report.DefaultFinancialPolicy()
	override := func(dst *decimal.Decimal, v float64) {
		if v > 0 {
			*dst = decimal.NewFromFloat(v)
		}
	}

	if c.ExpenseRatio > 0 {
		next := decimal.NewFromFloat(c.ExpenseRatio)
		factor := next.Div(p.ExpenseRatio)
		shares := make([]report.ExpenseShare, len(p.ExpenseShares))
		for i, s := range p.ExpenseShares {
			shares[i] = report.ExpenseShare{Name: s.Name, Ratio: s.Ratio.Mul(factor)}
		}
		p.ExpenseRatio = next
		p.ExpenseShares = shares
	}
	override(&p.TaxRate, c.TaxRate)
	override(&p.TaxPaidRatio, c.TaxPaidRatio)
	override(&p.SupplierPaymentRatio, c.SupplierPaymentRatio)
	override(&p.FixedCostRatio, c.FixedCostRatio)
	override(&p.InvestmentRatio, c.InvestmentRatio)
	override(&p.LiquidityRatio, c.LiquidityRatio)
	return p
}
