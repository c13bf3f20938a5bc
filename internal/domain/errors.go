package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")

	// Precondiciones de los reportes: las valida el llamador antes de invocar el motor.
	ErrInvalidDateRange = errors.New("rango de fechas inválido")
	ErrInvalidLimit     = errors.New("el límite debe ser un entero positivo")
	ErrUnknownAction    = errors.New("acción de reporte desconocida")

	// ErrDataIntegrity indica datos corruptos en el origen (ej. una línea de venta
	// que referencia un producto inexistente). Nunca se sustituye por un valor por defecto.
	ErrDataIntegrity = errors.New("violación de integridad en los datos de origen")
)
