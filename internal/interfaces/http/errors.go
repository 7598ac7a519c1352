package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/validation"
)

// respondError traduce un error de dominio a su respuesta HTTP. Es el único lugar con ese mapeo.
// Conflictos y fallos de almacenamiento responden solo el texto del sentinel; la cadena completa
// (claves de lock, intentos, error del driver) queda en el log.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	switch code {
	case codeConflict:
		log.Warn().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("conflicto en request")
		msg = domain.ErrConflict.Error()
	case codeStorage:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error en request")
		msg = domain.ErrStorage.Error()
	case codeInternal:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error en request")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Kind: domain.KindOf(err), Message: msg})
}

const (
	codeConflict = "CONFLICT"
	codeStorage  = "STORAGE_UNAVAILABLE"
	codeInternal = "INTERNAL"
)

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrIdempotencyMismatch):
		return fiber.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, codeStorage
	default:
		return fiber.StatusInternalServerError, codeInternal
	}
}

// parseBody lee el JSON y lo valida. Devuelve false si ya respondió con 400.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Kind: domain.KindValidation, Message: "cuerpo inválido"})
	}
	return validateBody(c, out)
}

// validateBody aplica los tags validate del DTO.
func validateBody(c *fiber.Ctx, out any) (bool, error) {
	if fields := validation.Struct(out); fields != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Kind: domain.KindValidation, Message: "datos inválidos", Fields: fields,
		})
	}
	return true, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Kind: domain.KindUnauthorized, Message: "token inválido"})
}

// page lee limit/offset de la query con tope.
func page(c *fiber.Ctx, def, maxLimit int) (int, int) {
	limit := c.QueryInt("limit", def)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
