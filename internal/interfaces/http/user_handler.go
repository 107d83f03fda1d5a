package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// UserHandler maneja las peticiones HTTP del recurso User.
type UserHandler struct {
	uc  *usecase.UserUseCase
	log *logger.Logger
}

// NewUserHandler construye el handler inyectando el caso de uso.
func NewUserHandler(uc *usecase.UserUseCase, log *logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

// Get godoc
// @Summary      Obtener usuario
// @Description  Datos del proveedor de identidad (user_meta) y del usuario interno (user_data).
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path  string  true  "uid de Firebase"
// @Success      200  {object}  dto.Envelope{data=dto.UserDetailResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/user/{uid} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetAuthContext(c), c.Params("uid"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// List godoc
// @Summary      Listar usuarios
// @Description  Filtros repetibles filter_fullnames, filter_emails, filter_stores, filter_countries;
// @Description  filter_platform y filter_inactive (0|1); order_by con prefijo "-" para descendente.
// @Description  Los roles de tienda solo ven usuarios de su propia tienda.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        per_page  path   int     true   "10, 20, 50 o 100"
// @Param        page      path   int     true   "Página (desde 1)"
// @Param        order_by  query  string  false  "fullname|email|created_at|updated_at|country|store_code"
// @Success      200  {object}  dto.Envelope{data=dto.UserPageResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Router       /api/user/list/{per_page}/{page} [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	in, err := listInput(c)
	if err != nil {
		return h.listingFailed(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetAuthContext(c), in)
	if err != nil {
		return h.listingFailed(c, err)
	}
	return ok(c, out)
}

// ListPlatform godoc
// @Summary      Listar usuarios de plataforma
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        per_page  path  int  true  "10, 20, 50 o 100"
// @Param        page      path  int  true  "Página (desde 1)"
// @Success      200  {object}  dto.Envelope{data=dto.UserPageResponse}
// @Failure      400  {object}  dto.Envelope
// @Router       /api/user/platform/list/{per_page}/{page} [get]
func (h *UserHandler) ListPlatform(c *fiber.Ctx) error {
	in, err := listInput(c)
	if err != nil {
		return h.listingFailed(c, err)
	}
	out, err := h.uc.ListPlatform(c.UserContext(), GetAuthContext(c), in)
	if err != nil {
		return h.listingFailed(c, err)
	}
	return ok(c, out)
}

// ListStore godoc
// @Summary      Listar usuarios de una tienda
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        store_code  path  string  true  "Código de la tienda"
// @Param        per_page    path  int     true  "10, 20, 50 o 100"
// @Param        page        path  int     true  "Página (desde 1)"
// @Success      200  {object}  dto.Envelope{data=dto.UserPageResponse}
// @Failure      403  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/user/store/{store_code}/list/{per_page}/{page} [get]
func (h *UserHandler) ListStore(c *fiber.Ctx) error {
	in, err := listInput(c)
	if err != nil {
		return h.listingFailed(c, err)
	}
	out, err := h.uc.ListStore(c.UserContext(), GetAuthContext(c), c.Params("store_code"), in)
	if err != nil {
		return h.listingFailed(c, err)
	}
	return ok(c, out)
}

func (h *UserHandler) listingFailed(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRestrictedAccess):
		metricsFrom(c).listingRejected("restricted_access")
	case errors.Is(err, domain.ErrInvalidParams):
		metricsFrom(c).listingRejected("invalid_params")
	}
	return fail(c, h.log, err)
}

// listInput junta paginación, filtros (claves filter_*, repetibles) y order_by del request.
// Cualquier otra clave de query es ErrInvalidParams.
func listInput(c *fiber.Ctx) (usecase.ListUsersInput, error) {
	perPage, err := c.ParamsInt("per_page")
	if err != nil {
		return usecase.ListUsersInput{}, fmt.Errorf("%w: per_page", domain.ErrInvalidParams)
	}
	page, err := c.ParamsInt("page")
	if err != nil {
		return usecase.ListUsersInput{}, fmt.Errorf("%w: page", domain.ErrInvalidParams)
	}
	in := usecase.ListUsersInput{Filters: map[string][]string{}, PerPage: perPage, Page: page}
	var unknown string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		switch {
		case key == authz.OrderBy:
			in.Orders = append(in.Orders, string(v))
		case strings.HasPrefix(key, "filter_"):
			in.Filters[key] = append(in.Filters[key], string(v))
		case unknown == "":
			unknown = key
		}
	})
	if unknown != "" {
		return usecase.ListUsersInput{}, fmt.Errorf("%w: parámetro desconocido %q", domain.ErrInvalidParams, unknown)
	}
	return in, nil
}

// ToggleActive godoc
// @Summary      Activar o desactivar usuario
// @Description  Refleja el cambio en el proveedor (disabled) y en la base.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path  string  true  "uid de Firebase"
// @Success      200  {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/user/{uid}/toggle_active [put]
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	out, err := h.uc.ToggleActive(c.UserContext(), c.Params("uid"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// PassedTutorial godoc
// @Summary      Marcar tutorial visto
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path  string  true  "uid de Firebase"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Router       /api/user/{uid}/passed_tutorial [put]
func (h *UserHandler) PassedTutorial(c *fiber.Ctx) error {
	if err := h.uc.MarkTutorialPassed(c.UserContext(), GetAuthContext(c), c.Params("uid")); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

// UpdateSelf godoc
// @Summary      Actualizar perfil propio
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateUserInfoRequest  true  "Perfil"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.Envelope
// @Router       /api/user/update [put]
func (h *UserHandler) UpdateSelf(c *fiber.Ctx) error {
	var in dto.UpdateUserInfoRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.UpdateOwnProfile(c.UserContext(), GetAuthContext(c), in); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

// UpdateOther godoc
// @Summary      Actualizar perfil de otro usuario (soporte)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uid   path  string                     true  "uid de Firebase"
// @Param        body  body  dto.UpdateUserInfoRequest  true  "Perfil"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Router       /api/user/{uid}/update [put]
func (h *UserHandler) UpdateOther(c *fiber.Ctx) error {
	var in dto.UpdateUserInfoRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.UpdateProfileBySupport(c.UserContext(), GetAuthContext(c), c.Params("uid"), in); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

// CreateStaff godoc
// @Summary      Crear staff de tienda
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        store_code  path  string                  true  "Código de la tienda"
// @Param        body        body  dto.CreateStaffRequest  true  "Cuenta y roles de tienda"
// @Success      200  {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/user/staff/{store_code} [post]
func (h *UserHandler) CreateStaff(c *fiber.Ctx) error {
	var in dto.CreateStaffRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateStaff(c.UserContext(), GetAuthContext(c), c.Params("store_code"), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// SyncPlatformUser godoc
// @Summary      Sincronizar usuario de plataforma
// @Description  Crea el usuario interno a partir de la cuenta del proveedor, o reemplaza sus roles de plataforma.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uid   path  string                       true  "uid de Firebase"
// @Param        body  body  dto.SyncPlatformUserRequest  true  "Roles de plataforma"
// @Success      200  {object}  dto.Envelope{data=dto.SyncUserResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/user/{uid} [post]
func (h *UserHandler) SyncPlatformUser(c *fiber.Ctx) error {
	var in dto.SyncPlatformUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SyncPlatformUser(c.UserContext(), c.Params("uid"), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}

// BindStore godoc
// @Summary      Registrar cliente de tienda
// @Description  Da de alta al dueño del token como StoreCustomer de la tienda. El uid de la ruta debe ser el del token.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        uid         path  string  true  "uid de Firebase"
// @Param        store_code  path  string  true  "Código de la tienda"
// @Success      200  {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      403  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/user/{uid}/bind/{store_code} [post]
func (h *UserHandler) BindStore(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmStoreBinding(GetAuthContext(c), c.Params("uid"), c.Params("store_code"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, out)
}
