package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
)

var _ repository.ReportDataRepository = (*ReportRepo)(nil)

// psql builder de consultas con placeholders $n para pgx.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ReportRepo consultas de solo lectura para el motor de reportes.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de lectura de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// completedSalesQuery cabeceras y líneas de las ventas COMPLETED del rango, en orden de fecha.
func completedSalesQuery(start, end time.Time) (string, []interface{}, error) {
	return psql.
		Select(
			"s.id::TEXT", "s.date", "s.total", "s.payment_method", "s.status",
			"COALESCE(s.customer_id::TEXT, '')", "COALESCE(s.user_id::TEXT, '')",
			"si.id::TEXT", "si.product_id::TEXT", "si.quantity", "si.unit_price", "si.subtotal",
		).
		From("sales s").
		LeftJoin("sale_items si ON si.sale_id = s.id").
		Where(squirrel.Eq{"s.status": string(entity.SaleStatusCompleted)}).
		Where(squirrel.GtOrEq{"s.date": start}).
		Where(squirrel.LtOrEq{"s.date": end}).
		OrderBy("s.date ASC", "s.id ASC", "si.id ASC").
		ToSql()
}

// FetchCompletedSales carga cabeceras y líneas en una sola consulta y las agrupa por venta.
// Las ventas sin líneas se conservan (LEFT JOIN).
func (r *ReportRepo) FetchCompletedSales(ctx context.Context, start, end time.Time) ([]entity.Sale, error) {
	query, args, err := completedSalesQuery(start, end)
	if err != nil {
		return nil, fmt.Errorf("reports.FetchCompletedSales: construir consulta: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports.FetchCompletedSales: %w", err)
	}
	defer rows.Close()

	var sales []entity.Sale
	for rows.Next() {
		var (
			s                   entity.Sale
			status              string
			itemID, productID   *string
			quantity            *int
			unitPrice, subtotal decimal.NullDecimal
		)
		if err := rows.Scan(
			&s.ID, &s.Date, &s.Total, &s.PaymentMethod, &status,
			&s.CustomerID, &s.SellerID,
			&itemID, &productID, &quantity, &unitPrice, &subtotal,
		); err != nil {
			return nil, fmt.Errorf("reports.FetchCompletedSales scan: %w", err)
		}
		s.Status = entity.SaleStatus(status)

		if n := len(sales); n == 0 || sales[n-1].ID != s.ID {
			sales = append(sales, s)
		}
		if itemID == nil {
			continue
		}
		cur := &sales[len(sales)-1]
		cur.Items = append(cur.Items, entity.SaleItem{
			ID:        *itemID,
			SaleID:    cur.ID,
			ProductID: deref(productID),
			Quantity:  derefInt(quantity),
			UnitPrice: unitPrice.Decimal,
			Subtotal:  subtotal.Decimal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports.FetchCompletedSales rows: %w", err)
	}
	return sales, nil
}

// ListProducts catálogo con stock actual.
func (r *ReportRepo) ListProducts(ctx context.Context) ([]entity.Product, error) {
	query, args, err := psql.
		Select(
			"id::TEXT", "name", "COALESCE(category_id::TEXT, '')",
			"purchase_price", "selling_price", "stock", "min_stock",
		).
		From("products").
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("reports.ListProducts: construir consulta: %w", err)
	}
	return collect(ctx, r.pool, "reports.ListProducts", query, args, func(row pgx.Rows) (entity.Product, error) {
		var p entity.Product
		err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.PurchasePrice, &p.SellingPrice, &p.Stock, &p.MinStock)
		return p, err
	})
}

func (r *ReportRepo) ListCategories(ctx context.Context) ([]entity.Category, error) {
	query, args, err := psql.Select("id::TEXT", "name").From("categories").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("reports.ListCategories: construir consulta: %w", err)
	}
	return collect(ctx, r.pool, "reports.ListCategories", query, args, func(row pgx.Rows) (entity.Category, error) {
		var c entity.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

func (r *ReportRepo) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	query, args, err := psql.
		Select(
			"id::TEXT", "name",
			"COALESCE(identification_type, '')", "COALESCE(identification_number, '')",
			"COALESCE(email, '')", "COALESCE(phone, '')", "created_at",
		).
		From("customers").
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("reports.ListCustomers: construir consulta: %w", err)
	}
	return collect(ctx, r.pool, "reports.ListCustomers", query, args, func(row pgx.Rows) (entity.Customer, error) {
		var c entity.Customer
		err := row.Scan(&c.ID, &c.Name, &c.IdentificationType, &c.IdentificationNumber, &c.Email, &c.Phone, &c.CreatedAt)
		return c, err
	})
}

// ListSellers todos los usuarios; cualquier rol puede registrar ventas.
func (r *ReportRepo) ListSellers(ctx context.Context) ([]entity.User, error) {
	query, args, err := psql.Select("id::TEXT", "name", "role").From("users").OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("reports.ListSellers: construir consulta: %w", err)
	}
	return collect(ctx, r.pool, "reports.ListSellers", query, args, func(row pgx.Rows) (entity.User, error) {
		var u entity.User
		err := row.Scan(&u.ID, &u.Name, &u.Role)
		return u, err
	})
}
