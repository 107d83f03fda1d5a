package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// StoreHandler maneja las peticiones HTTP del recurso Store.
type StoreHandler struct {
	uc  *usecase.StoreUseCase
	log *logger.Logger
}

// NewStoreHandler construye el handler inyectando el caso de uso.
func NewStoreHandler(uc *usecase.StoreUseCase, log *logger.Logger) *StoreHandler {
	return &StoreHandler{uc: uc, log: log}
}

// Info godoc
// @Summary      Información pública de una tienda
// @Tags         stores
// @Produce      json
// @Param        store_code  path  string  true  "Código de la tienda"
// @Success      200  {object}  dto.Envelope{data=dto.StoreResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/store/{store_code}/info [get]
func (h *StoreHandler) Info(c *fiber.Ctx) error {
	out, err := h.uc.Info(c.UserContext(), c.Params("store_code"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// List godoc
// @Summary      Listar tiendas
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.Envelope{data=[]dto.StoreResponse}
// @Router       /api/store/list [get]
func (h *StoreHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// Create godoc
// @Summary      Crear tienda
// @Description  Crea la tienda, la liga al usuario y le otorga StoreOwner.
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uid   path  string            true  "uid del dueño"
// @Param        body  body  dto.StoreRequest  true  "Datos de la tienda"
// @Success      200  {object}  dto.Envelope{data=dto.StoreResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/store/{uid}/create [post]
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in dto.StoreRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), c.Params("uid"), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// Freeze godoc
// @Summary      Congelar tienda
// @Description  Congela la tienda y desactiva a su dueño.
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        uid         path  string  true  "uid del dueño"
// @Param        store_code  path  string  true  "Código de la tienda"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/store/{uid}/{store_code} [delete]
func (h *StoreHandler) Freeze(c *fiber.Ctx) error {
	if err := h.uc.Freeze(c.UserContext(), c.Params("uid"), c.Params("store_code")); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

// Update godoc
// @Summary      Actualizar tienda
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uid         path  string            true  "uid del dueño"
// @Param        store_code  path  string            true  "Código de la tienda"
// @Param        body        body  dto.StoreRequest  true  "Datos de la tienda"
// @Success      200  {object}  dto.Envelope{data=dto.StoreResponse}
// @Failure      403  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/store/{uid}/{store_code}/update [put]
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	var in dto.StoreRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateMetadata(c.UserContext(), GetAuthContext(c), c.Params("uid"), c.Params("store_code"), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}
