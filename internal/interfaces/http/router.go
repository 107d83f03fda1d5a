package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storehub-api/internal/application/identity"
	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver  IdentityResolver
	UserUC    *usecase.UserUseCase
	StoreUC   *usecase.StoreUseCase
	Metrics   *Metrics // opcional
	Log       *logger.Logger
	APIPrefix string // por defecto /api
}

// Router registra las rutas de la API. Cada ruta protegida enumera todos los roles que admite.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{"status": "ok"})
	})

	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := app.Group(prefix)

	auth := ResolveIdentity(deps.Resolver, deps.Log, nil)
	bootstrapCustomer := ResolveIdentity(deps.Resolver, deps.Log, func(c *fiber.Ctx) *identity.Bootstrap {
		return &identity.Bootstrap{
			Roles:       []string{entity.RoleStoreCustomer},
			StoreCode:   c.Params("store_code"),
			ExpectedUID: c.Params("uid"),
		}
	})

	anyRole := RequireAnyRole(authz.RoleNames()...)
	accountsOrOwner := RequireAnyRole(entity.RoleAccounts, entity.RoleOwner)

	// Users
	users := api.Group("/user")
	uh := NewUserHandler(deps.UserUC, deps.Log)
	users.Get("/list/:per_page/:page", auth, anyRole, uh.List)
	users.Get("/platform/list/:per_page/:page", auth,
		RequireAnyRole(entity.RoleAccounts, entity.RoleOwner, entity.RoleSupport), uh.ListPlatform)
	users.Get("/store/:store_code/list/:per_page/:page", auth,
		RequireAnyRole(entity.RoleSupport, entity.RoleStoreAccount, entity.RoleStoreOwner, entity.RoleStoreSupport), uh.ListStore)
	users.Put("/update", auth, anyRole, uh.UpdateSelf)
	users.Post("/staff/:store_code", auth,
		RequireAnyRole(entity.RoleSupport, entity.RoleStoreSupport, entity.RoleStoreOwner), uh.CreateStaff)
	users.Get("/:uid", auth, anyRole, uh.Get)
	users.Post("/:uid", auth, accountsOrOwner, uh.SyncPlatformUser)
	users.Put("/:uid/toggle_active", auth, accountsOrOwner, uh.ToggleActive)
	users.Put("/:uid/passed_tutorial", auth, anyRole, uh.PassedTutorial)
	users.Put("/:uid/update", auth, RequireAnyRole(entity.RoleSupport, entity.RoleStoreSupport), uh.UpdateOther)
	users.Post("/:uid/bind/:store_code", bootstrapCustomer, anyRole, uh.BindStore)

	// Stores
	stores := api.Group("/store")
	sh := NewStoreHandler(deps.StoreUC, deps.Log)
	stores.Get("/list", auth,
		RequireAnyRole(entity.RoleSupport, entity.RoleOwner, entity.RoleAccounts, entity.RoleReports), sh.List)
	stores.Get("/:store_code/info", sh.Info)
	stores.Post("/:uid/create", auth, accountsOrOwner, sh.Create)
	stores.Delete("/:uid/:store_code", auth, accountsOrOwner, sh.Freeze)
	stores.Put("/:uid/:store_code/update", auth,
		RequireAnyRole(entity.RoleSupport, entity.RoleStoreOwner, entity.RoleStoreAccount), sh.Update)
}
