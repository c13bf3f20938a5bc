package entity

import "time"

// Customer representa un cliente del punto de venta.
type Customer struct {
	ID                   string
	Name                 string
	IdentificationType   string // CC, NIT, CE, ...
	IdentificationNumber string
	Email                string
	Phone                string
	CreatedAt            time.Time
}
