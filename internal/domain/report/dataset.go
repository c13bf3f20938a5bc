// Package report contiene el motor de agregación de reportes: transformaciones puras
// que reciben registros transaccionales ya cargados (ventas, productos, clientes,
// vendedores) y devuelven vistas analíticas agrupadas, ordenadas y derivadas.
//
// Ninguna función de este paquete accede a la base de datos, guarda estado entre
// llamadas ni modifica sus entradas; pueden invocarse en paralelo sin sincronización.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// Range rango de fechas inclusivo en ambos extremos.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange valida y construye un rango. start y end son obligatorios y start <= end.
func NewRange(start, end time.Time) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, fmt.Errorf("%w: fechas de inicio y fin obligatorias", domain.ErrInvalidDateRange)
	}
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: la fecha de inicio es posterior a la fecha de fin", domain.ErrInvalidDateRange)
	}
	return Range{Start: start, End: end}, nil
}

// Contains indica si t cae dentro del rango.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days cantidad de días calendario cubiertos por el rango (mínimo 1).
func (r Range) Days() int {
	return daysBetween(r.Start, r.End) + 1
}

// ValidateLimit verifica que un límite de ranking sea positivo.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: recibido %d", domain.ErrInvalidLimit, limit)
	}
	return nil
}

// Dataset es una instantánea inmutable de los registros de origen con índices de búsqueda.
// Solo conserva las ventas COMPLETED, ordenadas ascendentemente por fecha.
type Dataset struct {
	loc *time.Location

	sales      []entity.Sale
	products   []entity.Product
	categories []entity.Category
	customers  []entity.Customer
	sellers    []entity.User

	productByID  map[string]int
	categoryByID map[string]int
	customerByID map[string]int
	sellerByID   map[string]int
}

// NewDataset valida la integridad referencial de los registros y construye los índices.
//
// Devuelve domain.ErrDataIntegrity si una línea referencia un producto inexistente,
// si una venta referencia un cliente o vendedor inexistente, si un producto referencia
// una categoría inexistente, o si una línea no cumple Subtotal = Quantity * UnitPrice.
// loc nil equivale a time.Local.
func NewDataset(
	sales []entity.Sale,
	products []entity.Product,
	categories []entity.Category,
	customers []entity.Customer,
	sellers []entity.User,
	loc *time.Location,
) (*Dataset, error) {
	if loc == nil {
		loc = time.Local
	}
	ds := &Dataset{
		loc:          loc,
		products:     products,
		categories:   categories,
		customers:    customers,
		sellers:      sellers,
		productByID:  make(map[string]int, len(products)),
		categoryByID: make(map[string]int, len(categories)),
		customerByID: make(map[string]int, len(customers)),
		sellerByID:   make(map[string]int, len(sellers)),
	}
	for i, c := range categories {
		ds.categoryByID[c.ID] = i
	}
	for i, p := range products {
		if p.CategoryID != "" {
			if _, ok := ds.categoryByID[p.CategoryID]; !ok {
				return nil, fmt.Errorf("%w: producto %s referencia la categoría inexistente %s",
					domain.ErrDataIntegrity, p.ID, p.CategoryID)
			}
		}
		ds.productByID[p.ID] = i
	}
	for i, c := range customers {
		ds.customerByID[c.ID] = i
	}
	for i, u := range sellers {
		ds.sellerByID[u.ID] = i
	}

	completed := make([]entity.Sale, 0, len(sales))
	for _, s := range sales {
		if err := ds.checkSale(s); err != nil {
			return nil, err
		}
		if !s.IsCompleted() {
			continue
		}
		s.Date = s.Date.In(loc)
		completed = append(completed, s)
	}
	sort.SliceStable(completed, func(i, j int) bool {
		if !completed[i].Date.Equal(completed[j].Date) {
			return completed[i].Date.Before(completed[j].Date)
		}
		return completed[i].ID < completed[j].ID
	})
	ds.sales = completed
	return ds, nil
}

func (ds *Dataset) checkSale(s entity.Sale) error {
	if s.CustomerID != "" {
		if _, ok := ds.customerByID[s.CustomerID]; !ok {
			return fmt.Errorf("%w: venta %s referencia el cliente inexistente %s",
				domain.ErrDataIntegrity, s.ID, s.CustomerID)
		}
	}
	if s.SellerID != "" {
		if _, ok := ds.sellerByID[s.SellerID]; !ok {
			return fmt.Errorf("%w: venta %s referencia el vendedor inexistente %s",
				domain.ErrDataIntegrity, s.ID, s.SellerID)
		}
	}
	for _, it := range s.Items {
		if _, ok := ds.productByID[it.ProductID]; !ok {
			return fmt.Errorf("%w: venta %s referencia el producto inexistente %s",
				domain.ErrDataIntegrity, s.ID, it.ProductID)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: venta %s, producto %s con cantidad %d",
				domain.ErrDataIntegrity, s.ID, it.ProductID, it.Quantity)
		}
		if !it.Subtotal.Equal(it.UnitPrice.Mul(qty(it.Quantity))) {
			return fmt.Errorf("%w: venta %s, producto %s: subtotal %s distinto de %d x %s",
				domain.ErrDataIntegrity, s.ID, it.ProductID, it.Subtotal, it.Quantity, it.UnitPrice)
		}
	}
	return nil
}

// Location zona horaria usada para todos los agrupamientos del dataset.
func (ds *Dataset) Location() *time.Location { return ds.loc }

// Products devuelve el catálogo tal como se recibió.
func (ds *Dataset) Products() []entity.Product { return ds.products }

// Customers devuelve los clientes tal como se recibieron.
func (ds *Dataset) Customers() []entity.Customer { return ds.customers }

// Sellers devuelve los vendedores tal como se recibieron.
func (ds *Dataset) Sellers() []entity.User { return ds.sellers }

// ProductName nombre del producto; vacío si no existe.
func (ds *Dataset) ProductName(id string) string {
	if i, ok := ds.productByID[id]; ok {
		return ds.products[i].Name
	}
	return ""
}

// CustomerName nombre del cliente; vacío para ventas de mostrador.
func (ds *Dataset) CustomerName(id string) string { return ds.customerName(id) }

// SellerName nombre del vendedor; vacío si la venta no lo registra.
func (ds *Dataset) SellerName(id string) string { return ds.sellerName(id) }

// salesIn devuelve las ventas completadas dentro del rango (subslice de solo lectura).
func (ds *Dataset) salesIn(r Range) []entity.Sale {
	lo := sort.Search(len(ds.sales), func(i int) bool { return !ds.sales[i].Date.Before(r.Start) })
	hi := sort.Search(len(ds.sales), func(i int) bool { return ds.sales[i].Date.After(r.End) })
	if lo >= hi {
		return nil
	}
	return ds.sales[lo:hi]
}

// salesBefore devuelve las ventas completadas estrictamente anteriores a t.
func (ds *Dataset) salesBefore(t time.Time) []entity.Sale {
	hi := sort.Search(len(ds.sales), func(i int) bool { return !ds.sales[i].Date.Before(t) })
	return ds.sales[:hi]
}

func (ds *Dataset) product(id string) entity.Product {
	// La integridad se validó en NewDataset.
	return ds.products[ds.productByID[id]]
}

func (ds *Dataset) categoryName(id string) string {
	if i, ok := ds.categoryByID[id]; ok {
		return ds.categories[i].Name
	}
	return uncategorized
}

func (ds *Dataset) customerName(id string) string {
	if i, ok := ds.customerByID[id]; ok {
		return ds.customers[i].Name
	}
	return ""
}

func (ds *Dataset) sellerName(id string) string {
	if i, ok := ds.sellerByID[id]; ok {
		return ds.sellers[i].Name
	}
	return ""
}

// uncategorized etiqueta para productos sin categoría.
const uncategorized = "Sin categoría"

// saleCost costo de ventas de una venta: Σ cantidad × precio de compra.
func (ds *Dataset) saleCost(s entity.Sale) decimal.Decimal {
	cost := decimal.Zero
	for _, it := range s.Items {
		cost = cost.Add(ds.product(it.ProductID).PurchasePrice.Mul(qty(it.Quantity)))
	}
	return cost
}
