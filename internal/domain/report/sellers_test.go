package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/domain/report"
)

func sellerScenario(t *testing.T) *report.Dataset {
	return mustDataset(t,
		withSeller(sale("s1", at(2024, time.January, 5, 10), item("p1", 2, "50")), "u1"),
		withSeller(sale("s2", at(2024, time.January, 5, 15), item("p1", 3, "50")), "u1"),
		withSeller(sale("s3", at(2024, time.January, 8, 10), item("p3", 2, "15"), item("p2", 2, "10")), "u1"),
	)
}

func TestSellerSummary_EscenarioConcreto(t *testing.T) {
	got := report.SellerSummary(sellerScenario(t), month(t, 2024, time.January))

	require.Len(t, got, 2, "incluye vendedores sin ventas")
	assert.Equal(t, "u1", got[0].SellerID)
	assert.Equal(t, 3, got[0].NumSales)
	assertDecimal(t, "300", got[0].TotalAmount)
	assertDecimal(t, "100", got[0].AvgTicket)

	assert.Equal(t, "u2", got[1].SellerID)
	assert.Equal(t, 0, got[1].NumSales)
	assertDecimal(t, "0", got[1].AvgTicket)
}

func TestSellerTrend_Disperso(t *testing.T) {
	got := report.SellerTrend(sellerScenario(t), month(t, 2024, time.January))

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-05", got[0].Date)
	assert.Equal(t, 2, got[0].Count)
	assertDecimal(t, "250", got[0].Amount)
	assert.Equal(t, "2024-01-08", got[1].Date)
	assert.Equal(t, "Vendedor Uno", got[1].Name)
}

func TestTopProductsBySeller_LimitePorVendedor(t *testing.T) {
	ds := mustDataset(t,
		withSeller(sale("s1", at(2024, time.January, 5, 10), item("p1", 5, "50"), item("p3", 1, "15")), "u1"),
		withSeller(sale("s2", at(2024, time.January, 6, 10), item("p2", 2, "30"), item("p3", 9, "15")), "u2"),
	)
	got := report.TopProductsBySeller(ds, month(t, 2024, time.January), 1)

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].SellerID)
	require.Len(t, got[0].Products, 1)
	assert.Equal(t, "p1", got[0].Products[0].ProductID)
	assert.Equal(t, 5, got[0].Products[0].Quantity)

	assert.Equal(t, "u2", got[1].SellerID)
	require.Len(t, got[1].Products, 1, "el límite aplica por vendedor, no global")
	assert.Equal(t, "p3", got[1].Products[0].ProductID)
}
