package entity

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// User representa un usuario del sistema. En reportes actúa como vendedor.
type User struct {
	ID   string
	Name string
	Role string // admin, vendedor
}
