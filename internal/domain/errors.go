package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Cada operación del motor devuelve como máximo uno de estos tipos, envuelto con detalle.
var (
	ErrValidation        = errors.New("entrada inválida")
	ErrNotFound          = errors.New("lote no encontrado")
	ErrNoStock           = errors.New("sin stock disponible")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrIllegalTransition = errors.New("transición de estado no permitida")
	ErrTransient         = errors.New("fallo transitorio, reintente")
)

// Códigos estables expuestos por la API.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeNoStock           = "NO_STOCK"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeTransient         = "TRANSIENT"
	CodeInternal          = "INTERNAL"
)

var kinds = []struct {
	err  error
	code string
}{
	{ErrValidation, CodeValidation},
	{ErrNotFound, CodeNotFound},
	{ErrNoStock, CodeNoStock},
	{ErrInsufficientStock, CodeInsufficientStock},
	{ErrIllegalTransition, CodeIllegalTransition},
	{ErrTransient, CodeTransient},
}

// Errorf envuelve un error de dominio con un mensaje de detalle.
// errors.Is(err, kind) sigue siendo verdadero sobre el resultado.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// KindOf devuelve el código del error de dominio o CodeInternal si no es uno conocido.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return CodeInternal
}
