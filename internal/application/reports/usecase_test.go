package reports_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
	"github.com/jhoicas/Reportes-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fetchCall struct{ start, end time.Time }

type fakeRepo struct {
	mu         sync.Mutex
	sales      []entity.Sale
	products   []entity.Product
	categories []entity.Category
	customers  []entity.Customer
	sellers    []entity.User
	salesErr   error
	fetches    []fetchCall
}

func (r *fakeRepo) FetchCompletedSales(_ context.Context, start, end time.Time) ([]entity.Sale, error) {
	r.mu.Lock()
	r.fetches = append(r.fetches, fetchCall{start, end})
	r.mu.Unlock()
	if r.salesErr != nil {
		return nil, r.salesErr
	}
	var out []entity.Sale
	for _, s := range r.sales {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListProducts(context.Context) ([]entity.Product, error) { return r.products, nil }
func (r *fakeRepo) ListCategories(context.Context) ([]entity.Category, error) {
	return r.categories, nil
}
func (r *fakeRepo) ListCustomers(context.Context) ([]entity.Customer, error) { return r.customers, nil }
func (r *fakeRepo) ListSellers(context.Context) ([]entity.User, error)       { return r.sellers, nil }

func (r *fakeRepo) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetches)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = payload
	c.ttls[key] = ttl
	return nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis caído")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis caído")
}

type capturingPDF struct {
	doc reports.FinancialSummaryDocument
}

func (g *capturingPDF) FinancialSummaryPDF(_ context.Context, doc reports.FinancialSummaryDocument) ([]byte, error) {
	g.doc = doc
	return []byte("%PDF-1.3 prueba"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var bogota = time.FixedZone("COT", -5*3600)

func fixedNow() time.Time { return time.Date(2026, time.March, 20, 9, 0, 0, 0, bogota) }

func intPtr(n int) *int { return &n }

func newRepo() *fakeRepo {
	return &fakeRepo{
		categories: []entity.Category{{ID: "c1", Name: "Bebidas"}},
		products: []entity.Product{
			{ID: "p1", Name: "Gaseosa", CategoryID: "c1", PurchasePrice: decimal.NewFromInt(20),
				SellingPrice: decimal.NewFromInt(50), Stock: 10, MinStock: 5},
			{ID: "p2", Name: "Agua", CategoryID: "c1", PurchasePrice: decimal.NewFromInt(5),
				SellingPrice: decimal.NewFromInt(10), Stock: 0, MinStock: 3},
		},
		customers: []entity.Customer{{ID: "cu1", Name: "Ana"}},
		sellers:   []entity.User{{ID: "u1", Name: "Vendedor Uno", Role: entity.RoleVendedor}},
		sales: []entity.Sale{
			{
				ID: "s1", Date: time.Date(2026, time.March, 10, 10, 0, 0, 0, bogota),
				Total: decimal.NewFromInt(100), PaymentMethod: entity.PaymentCash,
				Status: entity.SaleStatusCompleted, CustomerID: "cu1", SellerID: "u1",
				Items: []entity.SaleItem{{ID: "i1", SaleID: "s1", ProductID: "p1", Quantity: 2,
					UnitPrice: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(100)}},
			},
		},
	}
}

// completedSale venta de una Gaseosa (2 × 50) del cliente indicado.
func completedSale(id string, date time.Time, customerID string) entity.Sale {
	return entity.Sale{
		ID: id, Date: date, Total: decimal.NewFromInt(100), PaymentMethod: entity.PaymentCash,
		Status: entity.SaleStatusCompleted, CustomerID: customerID, SellerID: "u1",
		Items: []entity.SaleItem{{ID: "i" + id, SaleID: id, ProductID: "p1", Quantity: 2,
			UnitPrice: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(100)}},
	}
}

func newUseCase(repo *fakeRepo, cache reports.ReportCache, pdf reports.FinancialPDFGenerator) *reports.ReportUseCase {
	return reports.NewReportUseCase(repo, cache, pdf, nil, reports.Config{
		Location: bogota,
		CacheTTL: time.Minute,
		Clock:    fixedNow,
	})
}

func marchRequest(action string) dto.ReportRequest {
	return dto.ReportRequest{Action: action, StartDate: "2026-03-01", EndDate: "2026-03-31"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho y resultado
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_VentasPorCategoria(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, nil, nil)

	resp, err := uc.Generate(context.Background(), "sales", marchRequest("getSalesByCategory"))
	require.NoError(t, err)

	assert.Equal(t, "sales", resp.Domain)
	assert.Equal(t, "getSalesByCategory", resp.Action)
	assert.False(t, resp.Cached)
	assert.NotEmpty(t, resp.ReportID)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Bebidas", rows[0]["category"])
	assert.Equal(t, float64(2), rows[0]["units_sold"])
}

func TestGenerate_VentasPorRangoResuelveNombres(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)

	resp, err := uc.Generate(context.Background(), "sales", marchRequest("getSalesByDateRange"))
	require.NoError(t, err)

	var sales []dto.SaleDTO
	require.NoError(t, json.Unmarshal(resp.Data, &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "Ana", sales[0].CustomerName)
	assert.Equal(t, "Vendedor Uno", sales[0].SellerName)
	require.Len(t, sales[0].Items, 1)
	assert.Equal(t, "Gaseosa", sales[0].Items[0].ProductName)
}

func TestGenerate_TodasLasAccionesDelCatalogo(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	for _, d := range []reports.Domain{
		reports.DomainSales, reports.DomainFinance, reports.DomainCustomers,
		reports.DomainInventory, reports.DomainSellers,
	} {
		names := reports.Actions(d)
		require.NotEmpty(t, names, "dominio %s sin acciones", d)
		for _, name := range names {
			resp, err := uc.Generate(context.Background(), string(d), marchRequest(name))
			require.NoError(t, err, "%s/%s", d, name)
			assert.True(t, json.Valid(resp.Data), "%s/%s debe devolver JSON válido", d, name)
		}
	}
}

func TestGenerate_InventarioSinRangoNoCargaVentas(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, nil, nil)

	resp, err := uc.Generate(context.Background(), "inventory", dto.ReportRequest{Action: "getLowStockInventory"})
	require.NoError(t, err)
	assert.Zero(t, repo.fetchCount(), "el inventario actual no necesita ventas")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0]["product_id"])
}

func TestGenerate_RetencionCargaHistorialDeClientes(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, nil, nil)

	req := marchRequest("getRetentionRate")
	req.Period = "monthly"
	_, err := uc.Generate(context.Background(), "customers", req)
	require.NoError(t, err)

	require.Equal(t, 1, repo.fetchCount())
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, bogota), repo.fetches[0].start)
}

func TestGenerate_RetencionClienteQueVuelveNoEsNuevo(t *testing.T) {
	repo := newRepo()
	repo.sales = append([]entity.Sale{completedSale("s0", time.Date(2026, time.January, 15, 10, 0, 0, 0, bogota), "cu1")}, repo.sales...)
	uc := newUseCase(repo, nil, nil)

	req := marchRequest("getRetentionRate")
	req.Period = "monthly"
	resp, err := uc.Generate(context.Background(), "customers", req)
	require.NoError(t, err)

	var rows []report.RetentionPeriod
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03", rows[0].Period)
	assert.Equal(t, 1, rows[0].Active)
	assert.Equal(t, 0, rows[0].New, "compró en enero")
	assert.Equal(t, 1, rows[0].Returning)
	assert.Equal(t, 0, rows[0].Retained, "febrero sin compras")
}

func TestGenerate_CicloDeVidaUsaPrimeraCompraHistorica(t *testing.T) {
	repo := newRepo()
	repo.sales = append([]entity.Sale{completedSale("s0", time.Date(2025, time.September, 10, 10, 0, 0, 0, bogota), "cu1")}, repo.sales...)
	uc := newUseCase(repo, nil, nil)

	resp, err := uc.Generate(context.Background(), "customers", marchRequest("getCustomerLifecycle"))
	require.NoError(t, err)

	var rows []report.CustomerLifecycleEntry
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2025, time.September, 10, 10, 0, 0, 0, bogota).Unix(), rows[0].FirstPurchase.Unix())
	assert.Equal(t, report.LifecycleActive, rows[0].Status)
	assert.Equal(t, 181, rows[0].DaysAsCustomer)
	assert.Equal(t, 1, rows[0].PurchaseCount, "solo cuentan las compras del rango")
}

func TestGenerate_ComparativoUsaHoyPorDefecto(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, nil, nil)

	_, err := uc.Generate(context.Background(), "sales", dto.ReportRequest{Action: "getComparativeAnalysis", Days: 7})
	require.NoError(t, err)

	require.Equal(t, 1, repo.fetchCount())
	// 14 días terminando el 20 de marzo.
	assert.Equal(t, time.Date(2026, time.March, 7, 0, 0, 0, 0, bogota), repo.fetches[0].start)
	assert.Equal(t, 20, repo.fetches[0].end.Day())
}

func TestGenerate_ComparativoConFechaFinal(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, nil, nil)

	resp, err := uc.Generate(context.Background(), "sales",
		dto.ReportRequest{Action: "getComparativeAnalysis", EndDate: "2026-03-15", Days: 7})
	require.NoError(t, err)
	assert.True(t, json.Valid(resp.Data))

	require.Equal(t, 1, repo.fetchCount())
	// 14 días terminando el 15 de marzo.
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, bogota), repo.fetches[0].start)
	assert.Equal(t, time.Date(2026, time.March, 16, 0, 0, 0, 0, bogota).Add(-time.Nanosecond), repo.fetches[0].end)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_DominioDesconocido(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.Generate(context.Background(), "marketing", marchRequest("getSalesTrend"))
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestGenerate_AccionDesconocida(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.Generate(context.Background(), "sales", marchRequest("getProfitAnalysis"))
	assert.ErrorIs(t, err, domain.ErrUnknownAction, "getProfitAnalysis pertenece a finance")
}

func TestGenerate_FaltanFechas(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.Generate(context.Background(), "sales", dto.ReportRequest{Action: "getSalesTrend", StartDate: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestGenerate_InicioPosteriorAlFin(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.Generate(context.Background(), "sales",
		dto.ReportRequest{Action: "getSalesTrend", StartDate: "2026-04-01", EndDate: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestGenerate_ValidacionDeCampos(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	req := marchRequest("getProfitAnalysis")
	req.Period = "hourly"
	req.StartDate = "01/03/2026"

	_, err := uc.Generate(context.Background(), "finance", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *reports.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Details))
	for _, d := range verr.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"startDate", "period"}, fields)
}

func TestGenerate_SinAccion(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.Generate(context.Background(), "sales", dto.ReportRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerate_LimiteNoPositivo(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	req := marchRequest("getTopCustomers")
	req.Limit = intPtr(0)
	_, err := uc.Generate(context.Background(), "customers", req)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestGenerate_IntegridadDeDatos(t *testing.T) {
	repo := newRepo()
	repo.sales[0].Items[0].ProductID = "p-inexistente"
	uc := newUseCase(repo, nil, nil)

	_, err := uc.Generate(context.Background(), "sales", marchRequest("getSalesTrend"))
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.Contains(t, err.Error(), "p-inexistente")
}

func TestGenerate_ErrorDelRepositorio(t *testing.T) {
	repo := newRepo()
	repo.salesErr = errors.New("conexión cerrada")
	uc := newUseCase(repo, nil, nil)

	_, err := uc.Generate(context.Background(), "sales", marchRequest("getSalesTrend"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión cerrada")
	assert.False(t, errors.Is(err, domain.ErrDataIntegrity))
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_SegundaPeticionSaleDeCache(t *testing.T) {
	repo := newRepo()
	cache := newMemoryCache()
	uc := newUseCase(repo, cache, nil)
	req := marchRequest("getFinancialSummary")

	first, err := uc.Generate(context.Background(), "finance", req)
	require.NoError(t, err)
	second, err := uc.Generate(context.Background(), "finance", req)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, 1, repo.fetchCount(), "la segunda petición no debe consultar la base")

	require.Len(t, cache.ttls, 1)
	for key, ttl := range cache.ttls {
		assert.True(t, strings.HasPrefix(key, "reports:finance:getFinancialSummary:"), key)
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestGenerate_ParametrosDistintosNoComparteCache(t *testing.T) {
	repo := newRepo()
	uc := newUseCase(repo, newMemoryCache(), nil)

	_, err := uc.Generate(context.Background(), "sales", marchRequest("getSalesTrend"))
	require.NoError(t, err)
	req := marchRequest("getSalesTrend")
	req.EndDate = "2026-03-15"
	resp, err := uc.Generate(context.Background(), "sales", req)
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, 2, repo.fetchCount())
}

func TestGenerate_CacheCaidaNoImpideElReporte(t *testing.T) {
	uc := newUseCase(newRepo(), brokenCache{}, nil)
	resp, err := uc.Generate(context.Background(), "sellers", marchRequest("getSellerSummary"))
	require.NoError(t, err)
	assert.False(t, resp.Cached)
}

func TestWarm_GuardaEnCache(t *testing.T) {
	cache := newMemoryCache()
	uc := newUseCase(newRepo(), cache, nil)

	require.NoError(t, uc.Warm(context.Background(), "sales", marchRequest("getSalesSummary")))
	assert.Len(t, cache.data, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestFinancialSummaryPDF_PasaResumenYDesglose(t *testing.T) {
	gen := &capturingPDF{}
	uc := newUseCase(newRepo(), nil, gen)

	pdf, err := uc.FinancialSummaryPDF(context.Background(),
		dto.ReportRequest{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pdf.Filename, "resumen-financiero_2026-03-01_2026-03-31_"))
	assert.True(t, strings.HasSuffix(pdf.Filename, ".pdf"))
	assert.NotEmpty(t, pdf.Content)

	assert.True(t, decimal.NewFromInt(100).Equal(gen.doc.Summary.TotalRevenue))
	assert.Equal(t, 1, gen.doc.Summary.SalesCount)
	assert.True(t, gen.doc.Expenses.Estimated)
	assert.Len(t, gen.doc.Expenses.Items, len(report.DefaultFinancialPolicy().ExpenseShares))
}

func TestFinancialSummaryPDF_SinGenerador(t *testing.T) {
	uc := newUseCase(newRepo(), nil, nil)
	_, err := uc.FinancialSummaryPDF(context.Background(), marchRequest(""))
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Política desde configuración
// ──────────────────────────────────────────────────────────────────────────────

func TestFinancialPolicyFromConfig_SinValoresUsaDefecto(t *testing.T) {
	got := reports.FinancialPolicyFromConfig(config.ReportsConfig{})
	want := report.DefaultFinancialPolicy()
	assert.True(t, want.ExpenseRatio.Equal(got.ExpenseRatio))
	assert.True(t, want.TaxRate.Equal(got.TaxRate))
	assert.True(t, want.LiquidityRatio.Equal(got.LiquidityRatio))
}

func TestFinancialPolicyFromConfig_ReescalaRubros(t *testing.T) {
	got := reports.FinancialPolicyFromConfig(config.ReportsConfig{ExpenseRatio: 0.30, TaxRate: 0.19})

	assert.Equal(t, "0.3", got.ExpenseRatio.String())
	assert.Equal(t, "0.19", got.TaxRate.String())

	sum := decimal.Zero
	for _, s := range got.ExpenseShares {
		sum = sum.Add(s.Ratio)
	}
	assert.Equal(t, "0.3", sum.Round(6).String(), "los rubros deben sumar la nueva fracción")
	assert.Equal(t, "0.12", got.ExpenseShares[0].Ratio.Round(6).String(), "Personal 6% pasa a 12%")
}
