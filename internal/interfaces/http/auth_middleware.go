package http

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storehub-api/internal/application/identity"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// LocalAuthContext key de Locals donde queda el *authz.AuthContext del request.
const LocalAuthContext = "auth_context"

// IdentityResolver lo que el middleware necesita del resolver de identidad.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string, bootstrap *identity.Bootstrap) (*authz.AuthContext, error)
}

// BootstrapFunc arma los parámetros de alta automática a partir del request.
type BootstrapFunc func(c *fiber.Ctx) *identity.Bootstrap

// ResolveIdentity lee el Bearer Token, resuelve la identidad y deja el AuthContext en Locals.
// Un usuario inactivo también queda en Locals: lo rechaza RequireAnyRole. Sin credencial el
// request sigue sin contexto y el guard responde MISSING_TOKEN.
// Con bootstrap != nil un uid desconocido se da de alta con los parámetros que devuelva.
func ResolveIdentity(resolver IdentityResolver, log *logger.Logger, bootstrap BootstrapFunc) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		credential, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fail(c, log, err)
		}
		var boot *identity.Bootstrap
		if bootstrap != nil {
			boot = bootstrap(c)
		}
		actx, err := resolver.Resolve(c.UserContext(), credential, boot)
		switch {
		case err == nil, errors.Is(err, domain.ErrUserInactive):
			c.Locals(LocalAuthContext, actx)
			return c.Next()
		case errors.Is(err, domain.ErrUnresolved):
			return c.Next()
		default:
			return fail(c, log, err)
		}
	}
}

// bearerToken extrae el token de "Bearer <token>". Header vacío devuelve "" sin error.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", nil
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: formato: Bearer <token>", domain.ErrInvalidCredential)
	}
	return strings.TrimSpace(token), nil
}

// RequireAnyRole permite el request si el usuario está activo y tiene alguno de los roles.
// Entra en pánico al registrar la ruta si algún nombre no existe en el catálogo.
func RequireAnyRole(roles ...string) fiber.Handler {
	if len(roles) == 0 {
		panic("RequireAnyRole: sin roles")
	}
	for _, r := range roles {
		if !authz.RoleExists(r) {
			panic(fmt.Sprintf("RequireAnyRole: rol desconocido %q", r))
		}
	}
	allowed := append([]string(nil), roles...)
	return func(c *fiber.Ctx) error {
		d := authz.Authorize(GetAuthContext(c), allowed...)
		metricsFrom(c).decision(d.Allowed, string(d.Reason))
		if !d.Allowed {
			return fail(c, nil, d.Err())
		}
		return c.Next()
	}
}

// GetAuthContext devuelve el AuthContext del request (nil si no hubo identidad).
func GetAuthContext(c *fiber.Ctx) *authz.AuthContext {
	actx, _ := c.Locals(LocalAuthContext).(*authz.AuthContext)
	return actx
}
