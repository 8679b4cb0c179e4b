package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain"
)

// errorMapping estado HTTP y código para cada error de dominio, en orden de prioridad.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrInvalidCredential, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrUserInactive, fiber.StatusForbidden, "USER_INACTIVE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnsupportedSchema, fiber.StatusUnprocessableEntity, "UNSUPPORTED_SCHEMA"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrCorruptData, fiber.StatusInternalServerError, "CORRUPT_DATA"},
	{domain.ErrStorageUnavailable, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
}

// writeError responde con el estado que corresponde al error de dominio.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// parsePatch lee el cuerpo como objeto JSON para las actualizaciones parciales.
func parsePatch(c *fiber.Ctx) (map[string]any, bool) {
	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil || patch == nil {
		return nil, false
	}
	return patch, true
}

// listResponse pagina según limit/offset de la query.
func listResponse[T any](c *fiber.Ctx, items []T) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	return c.JSON(dto.NewListResponse(items, page))
}
