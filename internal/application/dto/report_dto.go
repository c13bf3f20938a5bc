package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportRequest cuerpo de POST /api/reports/:domain.
// Fechas en formato YYYY-MM-DD interpretadas en la zona horaria de reportes;
// endDate incluye el día completo.
type ReportRequest struct {
	Action    string `json:"action" validate:"required,max=64"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Period    string `json:"period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	Limit     *int   `json:"limit"` // nil = valor por defecto; <= 0 se rechaza
	GroupBy   string `json:"groupBy" validate:"omitempty,oneof=category product"`
	Year      int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Days      int    `json:"days" validate:"omitempty,min=1,max=366"`
}

// ReportResponse envoltorio común de todos los reportes.
type ReportResponse struct {
	ReportID    string          `json:"reportId"`
	Domain      string          `json:"domain"`
	Action      string          `json:"action"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Cached      bool            `json:"cached"`
	Data        json.RawMessage `json:"data"`
}

// SaleDTO venta completada con sus líneas y los nombres ya resueltos.
type SaleDTO struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	SellerID      string          `json:"seller_id,omitempty"`
	SellerName    string          `json:"seller_name,omitempty"`
	Items         []SaleItemDTO   `json:"items"`
}

// SaleItemDTO línea de venta.
type SaleItemDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ReportPDF documento generado para descarga.
type ReportPDF struct {
	Filename string
	Content  []byte
}
