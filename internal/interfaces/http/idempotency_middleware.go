package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// HeaderIdempotencyKey header opcional de las peticiones mutantes.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// IdempotencyStore registro de claves de petición ya vistas. Lo implementan
// cache.MemoryIdempotencyStore y cache.RedisIdempotencyStore.
type IdempotencyStore interface {
	// Claim reserva la clave por ttl; false si ya estaba reservada.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rechaza con 409 DUPLICATE_REQUEST una clave repetida dentro del TTL, sin llegar al handler.
// La clave se libera si la petición falla (status >= 400) para que el cliente pueda reintentar.
// Sin header la petición pasa tal cual. Debe usarse DESPUÉS de AuthMiddleware: la clave se acota por usuario.
func Idempotency(store IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	if store == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado largo"})
		}
		scoped := GetUserID(c) + "|" + c.Method() + "|" + c.Path() + "|" + key

		claimed, err := store.Claim(c.Context(), scoped, ttl)
		if err != nil {
			log.Error().Err(err).Str("path", c.Path()).Msg("idempotencia: no se pudo reservar la clave")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la clave de idempotencia, intente más tarde"})
		}
		if !claimed {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "la petición con esta Idempotency-Key ya fue procesada"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(context.Background(), scoped); relErr != nil {
				log.Warn().Err(relErr).Str("path", c.Path()).Msg("idempotencia: no se pudo liberar la clave")
			}
		}
		return err
	}
}
