package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo con su stock actual.
// PurchasePrice es el costo usado para el costo de ventas (COGS).
type Product struct {
	ID            string
	Name          string
	CategoryID    string // vacío si no tiene categoría
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	Stock         int
	MinStock      int
}
