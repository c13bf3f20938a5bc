package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Reportes-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type stubRepo struct {
	sales    []entity.Sale
	salesErr error
}

func (r stubRepo) FetchCompletedSales(context.Context, time.Time, time.Time) ([]entity.Sale, error) {
	return r.sales, r.salesErr
}

func (stubRepo) ListProducts(context.Context) ([]entity.Product, error) {
	return []entity.Product{{ID: "p1", Name: "Gaseosa", PurchasePrice: decimal.NewFromInt(20),
		SellingPrice: decimal.NewFromInt(50), Stock: 4, MinStock: 5}}, nil
}
func (stubRepo) ListCategories(context.Context) ([]entity.Category, error) { return nil, nil }
func (stubRepo) ListCustomers(context.Context) ([]entity.Customer, error)  { return nil, nil }
func (stubRepo) ListSellers(context.Context) ([]entity.User, error)        { return nil, nil }

type stubPDF struct{}

func (stubPDF) FinancialSummaryPDF(context.Context, reports.FinancialSummaryDocument) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func saleOf(id string, day int, productID string) entity.Sale {
	return entity.Sale{
		ID: id, Date: time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC),
		Total: decimal.NewFromInt(100), PaymentMethod: entity.PaymentCash, Status: entity.SaleStatusCompleted,
		Items: []entity.SaleItem{{ID: id + "-1", SaleID: id, ProductID: productID, Quantity: 2,
			UnitPrice: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(100)}},
	}
}

func buildReportApp(repo stubRepo) *fiber.App {
	uc := reports.NewReportUseCase(repo, nil, stubPDF{}, nil, reports.Config{Location: time.UTC})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ReportUC:  uc,
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})
	return app
}

func postReport(t *testing.T, app *fiber.App, path, role string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

var march = dto.ReportRequest{Action: "getFinancialSummary", StartDate: "2026-03-01", EndDate: "2026-03-31"}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestReportHandler_ResumenFinanciero(t *testing.T) {
	app := buildReportApp(stubRepo{sales: []entity.Sale{saleOf("s1", 10, "p1")}})
	resp := postReport(t, app, "/api/reports/finance", "admin", march)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Domain string `json:"domain"`
		Action string `json:"action"`
		Data   struct {
			SalesCount      int      `json:"sales_count"`
			EstimatedFields []string `json:"estimated_fields"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "finance", body.Domain)
	assert.Equal(t, "getFinancialSummary", body.Action)
	assert.Equal(t, 1, body.Data.SalesCount)
	assert.NotEmpty(t, body.Data.EstimatedFields)
}

func TestReportHandler_VendedorNoAccede(t *testing.T) {
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/finance", "vendedor", march)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReportHandler_SinToken(t *testing.T) {
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/finance", "", march)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReportHandler_FechasFaltantes_400(t *testing.T) {
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/sales", "admin",
		dto.ReportRequest{Action: "getSalesTrend"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

func TestReportHandler_CampoInvalidoIncluyeDetalle(t *testing.T) {
	req := march
	req.Period = "semestral"
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/finance", "admin", req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "period", e.Details[0].Field)
}

func TestReportHandler_AccionDesconocida_400(t *testing.T) {
	req := march
	req.Action = "getEverything"
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/finance", "admin", req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_ACTION", decodeError(t, resp).Code)
}

func TestReportHandler_DominioDesconocido_400(t *testing.T) {
	resp := postReport(t, buildReportApp(stubRepo{}), "/api/reports/marketing", "admin", march)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_ACTION", decodeError(t, resp).Code)
}

func TestReportHandler_IntegridadDeDatos_422(t *testing.T) {
	app := buildReportApp(stubRepo{sales: []entity.Sale{saleOf("s1", 10, "p-fantasma")}})
	resp := postReport(t, app, "/api/reports/finance", "admin", march)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "DATA_INTEGRITY", decodeError(t, resp).Code)
}

func TestReportHandler_ErrorDeInfraestructura_500(t *testing.T) {
	app := buildReportApp(stubRepo{salesErr: errors.New("timeout")})
	resp := postReport(t, app, "/api/reports/finance", "admin", march)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "timeout", "el detalle interno no se expone")
}

func TestReportHandler_CuerpoInvalido_400(t *testing.T) {
	app := buildReportApp(stubRepo{})
	req := httptest.NewRequest(http.MethodPost, "/api/reports/sales", bytes.NewReader([]byte("{no-json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
}

func TestReportHandler_PDF(t *testing.T) {
	app := buildReportApp(stubRepo{sales: []entity.Sale{saleOf("s1", 10, "p1")}})
	resp := postReport(t, app, "/api/reports/finance/pdf", "admin",
		dto.ReportRequest{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "resumen-financiero_2026-03-01_2026-03-31_")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3", string(body))
}
