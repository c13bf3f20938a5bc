package report

import "github.com/shopspring/decimal"

// FinancialPolicy agrupa las fracciones con las que se estiman las cifras financieras
// que no existen en el modelo de datos (gastos, impuesto pagado, inversión, liquidez).
//
// Son política, no hechos medidos: cada reporte que las usa las marca como estimación.
// Se sobrescriben por configuración (REPORTS_*). Reemplazar por un libro contable real
// cuando exista la fuente.
type FinancialPolicy struct {
	ExpenseRatio         decimal.Decimal // gastos operativos / ingresos
	TaxRate              decimal.Decimal // IVA incluido en el precio de venta
	TaxPaidRatio         decimal.Decimal // impuesto pagado (descontable) / impuesto cobrado
	SupplierPaymentRatio decimal.Decimal // pagos a proveedores / ingresos del día
	FixedCostRatio       decimal.Decimal // costos fijos / costo total del grupo
	InvestmentRatio      decimal.Decimal // inversión estimada / ingresos
	LiquidityRatio       decimal.Decimal // razón corriente fija hasta tener balance general
	ExpenseShares        []ExpenseShare  // reparto de gastos por rubro, fracción de ingresos
}

// ExpenseShare rubro de gasto con su fracción de los ingresos.
type ExpenseShare struct {
	Name  string
	Ratio decimal.Decimal
}

// Rubros de gasto del desglose.
const (
	ExpensePersonnel  = "Personal"
	ExpenseRent       = "Arriendo"
	ExpenseServices   = "Servicios"
	ExpenseMarketing  = "Marketing"
	ExpenseTechnology = "Tecnología"
	ExpenseTaxes      = "Impuestos"
	ExpenseOther      = "Otros"
)

// DefaultFinancialPolicy valores históricos del negocio. La suma de ExpenseShares es ExpenseRatio.
func DefaultFinancialPolicy() FinancialPolicy {
	return FinancialPolicy{
		ExpenseRatio:         decimal.RequireFromString("0.15"),
		TaxRate:              decimal.RequireFromString("0.16"),
		TaxPaidRatio:         decimal.RequireFromString("0.70"),
		SupplierPaymentRatio: decimal.RequireFromString("0.60"),
		FixedCostRatio:       decimal.RequireFromString("0.30"),
		InvestmentRatio:      decimal.RequireFromString("0.50"),
		LiquidityRatio:       decimal.RequireFromString("1.5"),
		ExpenseShares: []ExpenseShare{
			{Name: ExpensePersonnel, Ratio: decimal.RequireFromString("0.06")},
			{Name: ExpenseRent, Ratio: decimal.RequireFromString("0.03")},
			{Name: ExpenseServices, Ratio: decimal.RequireFromString("0.015")},
			{Name: ExpenseMarketing, Ratio: decimal.RequireFromString("0.02")},
			{Name: ExpenseTechnology, Ratio: decimal.RequireFromString("0.01")},
			{Name: ExpenseTaxes, Ratio: decimal.RequireFromString("0.01")},
			{Name: ExpenseOther, Ratio: decimal.RequireFromString("0.005")},
		},
	}
}

// InventoryPolicy umbrales heurísticos de los reportes de inventario.
type InventoryPolicy struct {
	TurnoverEpsilon    decimal.Decimal // stock usado en la rotación cuando el stock es 0
	AlertWindowDays    int             // alerta temprana si el agotamiento cae dentro de la ventana
	CriticalDays       int
	HighDays           int
	CoverageDays       int             // días de cobertura objetivo para la cantidad sugerida
	ExcessCoverageDays int             // stock por encima de esta cobertura es exceso
	FastVelocity       decimal.Decimal // unidades/día
	MediumVelocity     decimal.Decimal
}

// DefaultInventoryPolicy umbrales por defecto.
func DefaultInventoryPolicy() InventoryPolicy {
	return InventoryPolicy{
		TurnoverEpsilon:    decimal.RequireFromString("0.1"),
		AlertWindowDays:    14,
		CriticalDays:       3,
		HighDays:           7,
		CoverageDays:       30,
		ExcessCoverageDays: 90,
		FastVelocity:       decimal.NewFromInt(1),
		MediumVelocity:     decimal.RequireFromString("0.2"),
	}
}

// TicketBand franja de tamaño de ticket [Min, Max). Max cero = sin tope.
type TicketBand struct {
	Name string
	Min  decimal.Decimal
	Max  decimal.Decimal
}

// DefaultTicketBands franjas por defecto (pesos).
func DefaultTicketBands() []TicketBand {
	return []TicketBand{
		{Name: "Pequeño", Min: decimal.Zero, Max: decimal.NewFromInt(50_000)},
		{Name: "Mediano", Min: decimal.NewFromInt(50_000), Max: decimal.NewFromInt(200_000)},
		{Name: "Grande", Min: decimal.NewFromInt(200_000)},
	}
}
