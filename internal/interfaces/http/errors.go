package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// NewValidator validador de DTOs; los errores usan el nombre JSON del campo.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindBody parsea el body JSON y lo valida. Los errores envuelven domain.ErrInvalidInput.
func bindBody(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	if err := v.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "datos inválidos"
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			parts = append(parts, e.Field()+" es requerido")
		case "gt":
			parts = append(parts, e.Field()+" debe ser mayor a "+e.Param())
		case "min":
			parts = append(parts, e.Field()+" debe ser mayor o igual a "+e.Param())
		case "max", "len":
			parts = append(parts, e.Field()+" excede el largo permitido ("+e.Param()+")")
		case "oneof":
			parts = append(parts, e.Field()+" debe ser uno de: "+e.Param())
		case "nefield":
			parts = append(parts, e.Field()+" debe ser distinto de "+e.Param())
		default:
			parts = append(parts, e.Field()+" inválido")
		}
	}
	return strings.Join(parts, "; ")
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindInsufficientStock: fiber.StatusConflict,
	domain.KindBadRequest:        fiber.StatusBadRequest,
	domain.KindUnauthorized:      fiber.StatusUnauthorized,
	domain.KindForbidden:         fiber.StatusForbidden,
}

var kindMessage = map[domain.ErrorKind]string{
	domain.KindNotFound:          "registro de stock no encontrado",
	domain.KindConflict:          "conflicto con el estado actual, reintente",
	domain.KindInsufficientStock: "stock insuficiente",
	domain.KindUnauthorized:      "no autorizado",
	domain.KindForbidden:         "acceso denegado al recurso",
}

// writeError traduce un error del núcleo a respuesta HTTP. Los internos se registran y no exponen detalle.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	kind := domain.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: string(domain.KindInternal), Message: "error interno"})
	}
	msg := kindMessage[kind]
	if kind == domain.KindBadRequest {
		msg = err.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(kind), Message: msg})
}
