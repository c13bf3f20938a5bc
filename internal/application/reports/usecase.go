// Package reports contiene el caso de uso que atiende las peticiones de reportes:
// valida parámetros, carga los registros de origen en paralelo, consulta la caché
// y delega el cálculo en el motor puro (domain/report).
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/report"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// Config parámetros del caso de uso. Políticas vacías toman los valores por defecto.
type Config struct {
	Location  *time.Location
	CacheTTL  time.Duration // 0 = no se guarda en caché
	Finance   report.FinancialPolicy
	Inventory report.InventoryPolicy
	Clock     func() time.Time // nil = time.Now

	// CustomerHistoryMonths historial previo al rango para ciclo de vida y retención.
	// 0 = DefaultCustomerHistoryMonths.
	CustomerHistoryMonths int
}

// ReportUseCase genera reportes para el panel administrativo.
type ReportUseCase struct {
	repo      repository.ReportDataRepository
	cache     ReportCache
	pdf       FinancialPDFGenerator
	log       *logger.Logger
	validate  *validator.Validate
	loc       *time.Location
	ttl       time.Duration
	finance   report.FinancialPolicy
	inventory report.InventoryPolicy
	now       func() time.Time
	history   int
}

// NewReportUseCase construye el caso de uso. cache y pdf pueden ser nil.
func NewReportUseCase(
	repo repository.ReportDataRepository,
	cache ReportCache,
	pdf FinancialPDFGenerator,
	log *logger.Logger,
	cfg Config,
) *ReportUseCase {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Finance.ExpenseShares == nil {
		cfg.Finance = report.DefaultFinancialPolicy()
	}
	if cfg.Inventory.CoverageDays == 0 {
		cfg.Inventory = report.DefaultInventoryPolicy()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.CustomerHistoryMonths <= 0 {
		cfg.CustomerHistoryMonths = DefaultCustomerHistoryMonths
	}
	return &ReportUseCase{
		repo:      repo,
		cache:     cache,
		pdf:       pdf,
		log:       log.Component("reports"),
		validate:  newValidator(),
		loc:       cfg.Location,
		ttl:       cfg.CacheTTL,
		finance:   cfg.Finance,
		inventory: cfg.Inventory,
		now:       cfg.Clock,
		history:   cfg.CustomerHistoryMonths,
	}
}

// Location zona horaria de los reportes.
func (uc *ReportUseCase) Location() *time.Location { return uc.loc }

// Generate ejecuta la acción pedida sobre el dominio indicado.
//
// Errores: domain.ErrUnknownAction (dominio o acción), domain.ErrInvalidInput /
// ErrInvalidDateRange / ErrInvalidLimit (parámetros), domain.ErrDataIntegrity (datos de origen).
func (uc *ReportUseCase) Generate(ctx context.Context, domainName string, req dto.ReportRequest) (*dto.ReportResponse, error) {
	d, err := ParseDomain(domainName)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	act, err := lookupAction(d, req.Action)
	if err != nil {
		return nil, err
	}
	p, err := parseParams(req, act.requiresRange(), uc.loc, uc.now())
	if err != nil {
		return nil, err
	}

	started := time.Now()
	key := cacheKey(d, req.Action, p)
	if payload, ok := uc.cached(ctx, key); ok {
		uc.log.Debug().Str("domain", string(d)).Str("action", req.Action).Bool("cache_hit", true).
			Dur("duration", time.Since(started)).Msg("reporte servido desde caché")
		return uc.response(d, req.Action, payload, true), nil
	}

	fetch, withSales := act.fetchRange(p, uc.loc, uc.history)
	ds, err := uc.loadDataset(ctx, fetch, withSales)
	if err != nil {
		return nil, fmt.Errorf("reports.%s.%s: %w", d, req.Action, err)
	}

	payload, err := json.Marshal(act.run(uc, ds, p))
	if err != nil {
		return nil, fmt.Errorf("reports.%s.%s: serializar: %w", d, req.Action, err)
	}
	uc.store(ctx, key, payload)

	uc.log.Info().Str("domain", string(d)).Str("action", req.Action).Bool("cache_hit", false).
		Dur("duration", time.Since(started)).Msg("reporte generado")
	return uc.response(d, req.Action, payload, false), nil
}

// FinancialSummaryPDF genera el PDF del resumen financiero del rango pedido.
func (uc *ReportUseCase) FinancialSummaryPDF(ctx context.Context, req dto.ReportRequest) (*dto.ReportPDF, error) {
	if uc.pdf == nil {
		return nil, errors.New("reports.FinancialSummaryPDF: generador PDF no configurado")
	}
	if req.Action == "" {
		req.Action = "getFinancialSummary"
	}
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	p, err := parseParams(req, true, uc.loc, uc.now())
	if err != nil {
		return nil, err
	}

	fetch := report.Range{Start: report.ShiftMonths(p.rng.Start, -1), End: p.rng.End}
	ds, err := uc.loadDataset(ctx, fetch, true)
	if err != nil {
		return nil, fmt.Errorf("reports.FinancialSummaryPDF: %w", err)
	}

	content, err := uc.pdf.FinancialSummaryPDF(ctx, FinancialSummaryDocument{
		Title:       "Resumen financiero",
		Range:       p.rng,
		Summary:     report.FinancialSummary(ds, p.rng, uc.finance),
		Expenses:    report.ExpenseBreakdown(ds, p.rng, uc.finance),
		GeneratedAt: uc.now().In(uc.loc),
	})
	if err != nil {
		return nil, fmt.Errorf("reports.FinancialSummaryPDF: %w", err)
	}
	filename := fmt.Sprintf("resumen-financiero_%s_%s_%s.pdf",
		p.rng.Start.Format(dateLayout), p.rng.End.Format(dateLayout), uuid.NewString()[:8])
	uc.log.Info().Str("file", filename).Int("bytes", len(content)).Msg("PDF de resumen financiero generado")
	return &dto.ReportPDF{Filename: filename, Content: content}, nil
}

// Warm calcula y guarda en caché un reporte sin devolverlo; lo usa el precálculo programado.
func (uc *ReportUseCase) Warm(ctx context.Context, domainName string, req dto.ReportRequest) error {
	if uc.cache == nil || uc.ttl <= 0 {
		return nil
	}
	_, err := uc.Generate(ctx, domainName, req)
	return err
}

func (uc *ReportUseCase) response(d Domain, action string, payload []byte, cached bool) *dto.ReportResponse {
	return &dto.ReportResponse{
		ReportID:    uuid.NewString(),
		Domain:      string(d),
		Action:      action,
		GeneratedAt: uc.now().In(uc.loc),
		Cached:      cached,
		Data:        json.RawMessage(payload),
	}
}

func (uc *ReportUseCase) cached(ctx context.Context, key string) ([]byte, bool) {
	if uc.cache == nil || uc.ttl <= 0 {
		return nil, false
	}
	payload, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida, se recalcula")
		return nil, false
	}
	return payload, ok
}

func (uc *ReportUseCase) store(ctx context.Context, key string, payload []byte) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, payload, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}

// loadDataset carga en paralelo las ventas del rango y los catálogos, y construye el Dataset.
func (uc *ReportUseCase) loadDataset(ctx context.Context, fetch report.Range, withSales bool) (*report.Dataset, error) {
	type salesResult struct {
		sales []entity.Sale
		err   error
	}
	type productsResult struct {
		products []entity.Product
		err      error
	}
	type categoriesResult struct {
		categories []entity.Category
		err        error
	}
	type customersResult struct {
		customers []entity.Customer
		err       error
	}
	type sellersResult struct {
		sellers []entity.User
		err     error
	}

	salesCh := make(chan salesResult, 1)
	productsCh := make(chan productsResult, 1)
	categoriesCh := make(chan categoriesResult, 1)
	customersCh := make(chan customersResult, 1)
	sellersCh := make(chan sellersResult, 1)

	go func() {
		if !withSales {
			salesCh <- salesResult{}
			return
		}
		sales, err := uc.repo.FetchCompletedSales(ctx, fetch.Start, fetch.End)
		salesCh <- salesResult{sales, err}
	}()
	go func() {
		products, err := uc.repo.ListProducts(ctx)
		productsCh <- productsResult{products, err}
	}()
	go func() {
		categories, err := uc.repo.ListCategories(ctx)
		categoriesCh <- categoriesResult{categories, err}
	}()
	go func() {
		customers, err := uc.repo.ListCustomers(ctx)
		customersCh <- customersResult{customers, err}
	}()
	go func() {
		sellers, err := uc.repo.ListSellers(ctx)
		sellersCh <- sellersResult{sellers, err}
	}()

	sales := <-salesCh
	products := <-productsCh
	categories := <-categoriesCh
	customers := <-customersCh
	sellers := <-sellersCh

	if sales.err != nil {
		return nil, fmt.Errorf("ventas: %w", sales.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("productos: %w", products.err)
	}
	if categories.err != nil {
		return nil, fmt.Errorf("categorías: %w", categories.err)
	}
	if customers.err != nil {
		return nil, fmt.Errorf("clientes: %w", customers.err)
	}
	if sellers.err != nil {
		return nil, fmt.Errorf("vendedores: %w", sellers.err)
	}

	ds, err := report.NewDataset(sales.sales, products.products, categories.categories, customers.customers, sellers.sellers, uc.loc)
	if err != nil {
		if errors.Is(err, domain.ErrDataIntegrity) {
			uc.log.Error().Err(err).Msg("datos de origen inconsistentes")
		}
		return nil, err
	}
	return ds, nil
}
