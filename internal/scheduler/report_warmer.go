// Package scheduler contiene los trabajos programados del servicio.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// Warmer lo que el precálculo necesita del caso de uso de reportes.
type Warmer interface {
	Warm(ctx context.Context, domain string, req dto.ReportRequest) error
}

// WarmTarget reporte a precalcular.
type WarmTarget struct {
	Domain string
	Action string
	Period string
}

// DefaultWarmTargets reportes más consultados del panel: resumen financiero y resumen
// de ventas del mes en curso.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{Domain: "finance", Action: "getFinancialSummary"},
		{Domain: "sales", Action: "getSalesSummary", Period: "monthly"},
	}
}

// ReportWarmer recalcula periódicamente los reportes del mes en curso para que el
// panel los lea desde la caché.
type ReportWarmer struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	cron      string
	targets   []WarmTarget
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// NewReportWarmer construye el trabajo. cron vacío lo deja desactivado.
func NewReportWarmer(warmer Warmer, cron string, loc *time.Location, log *logger.Logger) *ReportWarmer {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportWarmer{
		scheduler: gocron.NewScheduler(loc),
		warmer:    warmer,
		cron:      cron,
		targets:   DefaultWarmTargets(),
		loc:       loc,
		log:       log.Component("report_warmer"),
		now:       time.Now,
	}
}

// Start agenda el trabajo y lo detiene cuando ctx se cancela.
func (w *ReportWarmer) Start(ctx context.Context) error {
	if w.cron == "" {
		w.log.Info().Msg("precálculo de reportes desactivado (REPORTS_WARMER_CRON vacío)")
		return nil
	}

	if _, err := w.scheduler.Cron(w.cron).Do(func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduler: agendar precálculo %q: %w", w.cron, err)
	}
	w.scheduler.StartAsync()
	w.log.Info().Str("cron", w.cron).Msg("precálculo de reportes agendado")

	go func() {
		<-ctx.Done()
		w.scheduler.Stop()
		w.log.Info().Msg("precálculo de reportes detenido")
	}()
	return nil
}

// RunOnce precalcula todos los reportes objetivo. Si ya hay una ejecución en curso no hace nada.
// Devuelve cuántos reportes quedaron en caché.
func (w *ReportWarmer) RunOnce(ctx context.Context) int {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.log.Debug().Msg("precálculo en curso, se omite esta ejecución")
		return 0
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	now := w.now().In(w.loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, w.loc)

	warmed := 0
	for _, t := range w.targets {
		req := dto.ReportRequest{
			Action:    t.Action,
			StartDate: start.Format("2006-01-02"),
			EndDate:   now.Format("2006-01-02"),
			Period:    t.Period,
		}
		if err := w.warmer.Warm(ctx, t.Domain, req); err != nil {
			w.log.Warn().Err(err).Str("domain", t.Domain).Str("action", t.Action).Msg("precálculo fallido")
			continue
		}
		warmed++
	}
	w.log.Info().Int("warmed", warmed).Int("targets", len(w.targets)).Msg("precálculo de reportes completado")
	return warmed
}
