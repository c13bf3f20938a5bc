package report_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo base de los tests
//
//	c1 Bebidas: p1 (costo 20, stock 10, mín 5), p3 (costo 5, stock 200, mín 10)
//	c2 Snacks:  p2 (costo 10, stock 0, mín 3)
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("esperado %s, obtenido %s", want, got), msgAndArgs...)
	}
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func rng(t *testing.T, start, end time.Time) report.Range {
	t.Helper()
	r, err := report.NewRange(start, end)
	require.NoError(t, err)
	return r
}

// month rango completo de un mes.
func month(t *testing.T, y int, m time.Month) report.Range {
	t.Helper()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return rng(t, start, start.AddDate(0, 1, 0).Add(-time.Nanosecond))
}

func testCategories() []entity.Category {
	return []entity.Category{{ID: "c1", Name: "Bebidas"}, {ID: "c2", Name: "Snacks"}}
}

func testProducts() []entity.Product {
	return []entity.Product{
		{ID: "p1", Name: "Gaseosa", CategoryID: "c1", PurchasePrice: dec("20"), SellingPrice: dec("50"), Stock: 10, MinStock: 5},
		{ID: "p2", Name: "Papas", CategoryID: "c2", PurchasePrice: dec("10"), SellingPrice: dec("30"), Stock: 0, MinStock: 3},
		{ID: "p3", Name: "Agua", CategoryID: "c1", PurchasePrice: dec("5"), SellingPrice: dec("15"), Stock: 200, MinStock: 10},
	}
}

func testCustomers() []entity.Customer {
	return []entity.Customer{
		{ID: "cu1", Name: "Ana"},
		{ID: "cu2", Name: "Bruno"},
		{ID: "cu3", Name: "Carla"},
	}
}

func testSellers() []entity.User {
	return []entity.User{
		{ID: "u1", Name: "Vendedor Uno", Role: entity.RoleVendedor},
		{ID: "u2", Name: "Vendedor Dos", Role: entity.RoleVendedor},
	}
}

func item(productID string, quantity int, unitPrice string) entity.SaleItem {
	return entity.SaleItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: dec(unitPrice),
		Subtotal:  dec(unitPrice).Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// sale venta COMPLETED en efectivo cuyo total es la suma de sus líneas.
func sale(id string, date time.Time, items ...entity.SaleItem) entity.Sale {
	total := decimal.Zero
	for i := range items {
		items[i].SaleID = id
		items[i].ID = fmt.Sprintf("%s-%d", id, i)
		total = total.Add(items[i].Subtotal)
	}
	return entity.Sale{
		ID:            id,
		Date:          date,
		Total:         total,
		PaymentMethod: entity.PaymentCash,
		Status:        entity.SaleStatusCompleted,
		Items:         items,
	}
}

func withCustomer(s entity.Sale, customerID string) entity.Sale {
	s.CustomerID = customerID
	return s
}

func withSeller(s entity.Sale, sellerID string) entity.Sale {
	s.SellerID = sellerID
	return s
}

func withPayment(s entity.Sale, method string) entity.Sale {
	s.PaymentMethod = method
	return s
}

func withStatus(s entity.Sale, status entity.SaleStatus) entity.Sale {
	s.Status = status
	return s
}

func mustDataset(t *testing.T, sales ...entity.Sale) *report.Dataset {
	t.Helper()
	ds, err := report.NewDataset(sales, testProducts(), testCategories(), testCustomers(), testSellers(), time.UTC)
	require.NoError(t, err)
	return ds
}
