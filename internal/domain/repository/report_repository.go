package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ReportDataRepository lectura de los registros de origen que consume el motor de reportes.
// Las implementaciones son read-only y devuelven los registros ya unidos (ventas con sus líneas).
type ReportDataRepository interface {
	// FetchCompletedSales ventas COMPLETED con fecha en [start, end], con sus líneas,
	// en orden ascendente de fecha.
	FetchCompletedSales(ctx context.Context, start, end time.Time) ([]entity.Sale, error)

	// ListProducts catálogo completo con stock actual.
	ListProducts(ctx context.Context) ([]entity.Product, error)

	ListCategories(ctx context.Context) ([]entity.Category, error)
	ListCustomers(ctx context.Context) ([]entity.Customer, error)

	// ListSellers usuarios que registran ventas.
	ListSellers(ctx context.Context) ([]entity.User, error)
}
