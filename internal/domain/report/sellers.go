package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SellerStats resumen de ventas de un vendedor.
type SellerStats struct {
	SellerID    string          `json:"seller_id"`
	Name        string          `json:"name"`
	NumSales    int             `json:"num_sales"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AvgTicket   decimal.Decimal `json:"avg_ticket"`
}

// SellerDay ventas de un vendedor en un día.
type SellerDay struct {
	SellerID string          `json:"seller_id"`
	Name     string          `json:"name"`
	Date     string          `json:"date"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// SellerProduct producto vendido por un vendedor.
type SellerProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SellerTopProducts ranking de productos de un vendedor.
type SellerTopProducts struct {
	SellerID string          `json:"seller_id"`
	Name     string          `json:"name"`
	Products []SellerProduct `json:"products"`
}

// SellerSummary todos los vendedores, incluidos los que no vendieron, descendente por total.
func SellerSummary(ds *Dataset, r Range) []SellerStats {
	type acc struct {
		n     int
		total decimal.Decimal
	}
	byID := make(map[string]*acc, len(ds.sellers))
	for _, s := range ds.salesIn(r) {
		if s.SellerID == "" {
			continue
		}
		a, ok := byID[s.SellerID]
		if !ok {
			a = &acc{total: decimal.Zero}
			byID[s.SellerID] = a
		}
		a.n++
		a.total = a.total.Add(s.Total)
	}

	out := make([]SellerStats, 0, len(ds.sellers))
	for _, u := range ds.sellers {
		st := SellerStats{SellerID: u.ID, Name: u.Name, TotalAmount: decimal.Zero, AvgTicket: decimal.Zero}
		if a, ok := byID[u.ID]; ok {
			st.NumSales = a.n
			st.TotalAmount = money(a.total)
			st.AvgTicket = money(safeDiv(a.total, qty(a.n)))
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TotalAmount.Equal(out[j].TotalAmount) {
			return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
		}
		return out[i].SellerID < out[j].SellerID
	})
	return out
}

// SellerTrend ventas por vendedor y día, solo días con ventas. Orden: fecha, luego vendedor.
func SellerTrend(ds *Dataset, r Range) []SellerDay {
	type key struct{ seller, date string }
	var keys []key
	byKey := make(map[key]*SellerDay)
	for _, s := range ds.salesIn(r) {
		if s.SellerID == "" {
			continue
		}
		k := key{s.SellerID, s.Date.Format("2006-01-02")}
		d, ok := byKey[k]
		if !ok {
			d = &SellerDay{SellerID: k.seller, Name: ds.sellerName(k.seller), Date: k.date, Amount: decimal.Zero}
			byKey[k] = d
			keys = append(keys, k)
		}
		d.Count++
		d.Amount = d.Amount.Add(s.Total)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].seller < keys[j].seller
	})
	out := make([]SellerDay, 0, len(keys))
	for _, k := range keys {
		d := byKey[k]
		d.Amount = money(d.Amount)
		out = append(out, *d)
	}
	return out
}

// TopProductsBySeller por cada vendedor con ventas, sus productos por cantidad vendida,
// hasta limit por vendedor. Vendedores en orden de ID.
func TopProductsBySeller(ds *Dataset, r Range, limit int) []SellerTopProducts {
	bySeller := make(map[string]map[string]*SellerProduct)
	for _, s := range ds.salesIn(r) {
		if s.SellerID == "" {
			continue
		}
		prods, ok := bySeller[s.SellerID]
		if !ok {
			prods = make(map[string]*SellerProduct)
			bySeller[s.SellerID] = prods
		}
		for _, it := range s.Items {
			sp, ok := prods[it.ProductID]
			if !ok {
				sp = &SellerProduct{ProductID: it.ProductID, Name: ds.product(it.ProductID).Name, Revenue: decimal.Zero}
				prods[it.ProductID] = sp
			}
			sp.Quantity += it.Quantity
			sp.Revenue = sp.Revenue.Add(it.Subtotal)
		}
	}

	sellerIDs := make([]string, 0, len(bySeller))
	for id := range bySeller {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Strings(sellerIDs)

	out := make([]SellerTopProducts, 0, len(sellerIDs))
	for _, id := range sellerIDs {
		list := make([]SellerProduct, 0, len(bySeller[id]))
		for _, sp := range bySeller[id] {
			sp.Revenue = money(sp.Revenue)
			list = append(list, *sp)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Quantity != list[j].Quantity {
				return list[i].Quantity > list[j].Quantity
			}
			return list[i].ProductID < list[j].ProductID
		})
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		out = append(out, SellerTopProducts{SellerID: id, Name: ds.sellerName(id), Products: list})
	}
	return out
}
