package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// errorKind status HTTP y código estable de un error de dominio.
type errorKind struct {
	err    error
	status int
	code   string
}

// El orden importa: el primer error que coincide gana.
var errorKinds = []errorKind{
	{domain.ErrUnresolved, fiber.StatusUnauthorized, "MISSING_TOKEN"},
	{domain.ErrInvalidCredential, fiber.StatusUnauthorized, "INVALID_TOKEN"},
	{domain.ErrProviderUnavailable, fiber.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrUserInactive, fiber.StatusUnauthorized, "USER_INACTIVE"},
	{domain.ErrNoMatchingRole, fiber.StatusUnauthorized, "NO_MATCHING_ROLE"},
	{domain.ErrRestrictedAccess, fiber.StatusForbidden, "RESTRICTED_ACCESS"},
	{domain.ErrInvalidParams, fiber.StatusBadRequest, "INVALID_PARAMS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_PARAMS"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// classify devuelve status, código y mensaje públicos de err. Los errores no clasificados
// son 500 y su mensaje no se expone.
func classify(err error) (int, string, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code, err.Error()
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL", "error interno"
}

// ok responde con el envelope de éxito.
func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(dto.Success(data))
}

// fail responde con el envelope de error. Los 500 se registran con la causa completa.
func fail(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := classify(err)
	if status == fiber.StatusInternalServerError && log != nil {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	if status == fiber.StatusServiceUnavailable && log != nil {
		log.Warn().Err(err).Str("path", c.Path()).Msg("proveedor de identidad no disponible")
	}
	return c.Status(status).JSON(dto.Failure(msg, map[string]any{"code": code}))
}

// invalidBody respuesta para cuerpos JSON que no se pueden decodificar.
func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("cuerpo inválido", map[string]any{"code": "INVALID_BODY"}))
}

// ErrorHandler envuelve en el envelope los errores que fiber genera por su cuenta (404 de ruta,
// 405, panics recuperados).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.Failure(fe.Message, map[string]any{"code": "HTTP_" + strconv.Itoa(fe.Code)}))
		}
		return fail(c, log, err)
	}
}
