package cache

import (
	"context"
	"time"

	"github.com/jhoicas/Reportes-api/internal/application/reports"
)

var _ reports.ReportCache = NoopReportCache{}

// NoopReportCache caché desactivada: nunca encuentra nada y descarta las escrituras.
type NoopReportCache struct{}

func (NoopReportCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopReportCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
