package entity

// Category representa una categoría de productos; en reportes solo agrupa.
type Category struct {
	ID   string
	Name string
}
