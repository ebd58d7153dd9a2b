package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// el orden importa: errores envueltos con dos causas (p. ej. entrada inválida por
// FEC desbalanceado) toman el primer código que coincida.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrProfileNotFound, fiber.StatusNotFound, "PROFILE_NOT_FOUND"},
	{domain.ErrCertificateNotFound, fiber.StatusNotFound, "CERTIFICATE_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrAlreadyExists, fiber.StatusConflict, "ALREADY_EXISTS"},
	{domain.ErrAlreadySigned, fiber.StatusConflict, "ALREADY_SIGNED"},
	{domain.ErrPeriodClosed, fiber.StatusConflict, "PERIOD_CLOSED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrHashComputation, fiber.StatusInternalServerError, "HASH_COMPUTATION"},
	{domain.ErrSigning, fiber.StatusInternalServerError, "SIGNING"},
	{domain.ErrPersistence, fiber.StatusInternalServerError, "PERSISTENCE"},
}

// respondError traduce un error de dominio a status y ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
