package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bebidas-api/internal/application/dto"
	"github.com/jhoicas/bebidas-api/internal/domain"
)

// statusFor traduce el código de dominio a estado HTTP. Es el único lugar que conoce esta tabla.
func statusFor(code string) int {
	switch code {
	case domain.CodeValidation, domain.CodeNoStock, domain.CodeInsufficientStock:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeIllegalTransition:
		return fiber.StatusConflict
	case domain.CodeTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde {code, message}. Los errores no tipados se ocultan tras INTERNAL.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.KindOf(err)
	msg := err.Error()
	if code == domain.CodeInternal {
		msg = "error interno"
	}
	if code == domain.CodeTransient {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(statusFor(code)).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func validationError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeValidation, Message: msg})
}

// ErrorHandler handler de errores de la app Fiber: rutas inexistentes, panics recuperados y
// cualquier error que un handler devuelva sin haber respondido.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := domain.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = domain.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusUnprocessableEntity:
			code = domain.CodeValidation
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
