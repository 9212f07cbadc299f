package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInternal          = errors.New("error interno de almacenamiento")
)

// ErrorKind clasifica un error para los adaptadores de transporte.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindBadRequest        ErrorKind = "VALIDATION"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindInternal          ErrorKind = "INTERNAL"
)

// Kind devuelve la categoría del error. Lo que no es un error de dominio conocido es interno.
// ErrInsufficientStock se evalúa antes que ErrConflict: ambos se exponen como 409 pero con código distinto.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidInput):
		return KindBadRequest
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
