package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las capas superiores los envuelven con %w y los comparan con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto de concurrencia, intente de nuevo")
	ErrStorage      = errors.New("almacenamiento no disponible")

	// ErrIdempotencyMismatch: la clave ya se usó con un contenido distinto. Es un error de validación.
	ErrIdempotencyMismatch = fmt.Errorf("%w: clave de idempotencia reutilizada con otro contenido", ErrInvalidInput)
)

// Invalid construye un error de validación con detalle.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Error kinds expuestos en la API.
const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindStorage      = "storage"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
)

// KindOf clasifica un error en la taxonomía pública.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindStorage
	}
}
