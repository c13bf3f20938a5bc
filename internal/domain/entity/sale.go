package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta en el sistema transaccional.
type SaleStatus string

// Estados válidos de una venta. Solo COMPLETED participa en los reportes.
const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// Métodos de pago conocidos; cualquier otro valor se reporta como "otro".
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

// Sale representa la cabecera de una venta con sus líneas ya cargadas.
// CustomerID vacío = venta de mostrador sin cliente registrado.
type Sale struct {
	ID            string
	Date          time.Time
	Total         decimal.Decimal
	PaymentMethod string
	Status        SaleStatus
	CustomerID    string
	SellerID      string // UserID del vendedor
	Items         []SaleItem
}

// IsCompleted indica si la venta cuenta para analítica.
func (s Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// SaleItem representa una línea de detalle de una venta.
// Subtotal = Quantity * UnitPrice (exacto).
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
