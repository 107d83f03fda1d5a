package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/jhoicas/storehub-api/docs"
	"github.com/jhoicas/storehub-api/internal/application/identity"
	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/infrastructure/cache"
	infraidentity "github.com/jhoicas/storehub-api/internal/infrastructure/identity"
	"github.com/jhoicas/storehub-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/storehub-api/internal/interfaces/http"
	"github.com/jhoicas/storehub-api/pkg/config"
	"github.com/jhoicas/storehub-api/pkg/firebase"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// @title			StoreHub API
// @version		1.0
// @description	Identidad, roles y tiendas multi-tenant sobre Firebase Authentication.
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de base de datos")
	}

	roleRepo := postgres.NewRoleRepository(pool)
	if err := usecase.NewRoleService(roleRepo).Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("catálogo de roles")
	}

	cacheClient, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Cache.Driver).Msg("cache")
	}
	defer cacheClient.Close()

	userRepo := postgres.NewUserRepository(pool)
	storeRepo := cache.NewStoreRepository(postgres.NewStoreRepository(pool), cacheClient, cfg.Cache.StoreTTL, log)
	txRunner := postgres.NewTxRunner(pool)

	keys, err := firebase.NewRemoteKeys(ctx, cfg.Firebase.JWKSURL, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("llaves de Firebase")
	}
	verifier, err := firebase.NewVerifier(cfg.Firebase.ProjectID, keys)
	if err != nil {
		log.Fatal().Err(err).Msg("verificador de tokens")
	}
	admin, err := firebase.NewAdminClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente admin de Firebase")
	}
	provider := infraidentity.NewFirebaseProvider(verifier, admin, cfg.Firebase.CheckRevoked)

	resolver := identity.NewResolver(provider, userRepo, roleRepo, storeRepo, log)
	userUC := usecase.NewUserUseCase(userRepo, roleRepo, storeRepo, provider, log)
	storeUC := usecase.NewStoreUseCase(storeRepo, userRepo, roleRepo, txRunner, provider, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := httpRouter.NewMetrics(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("métricas")
	}
	if err := metrics.WatchPool(pool); err != nil {
		log.Fatal().Err(err).Msg("métricas del pool")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StoreHub API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver:  resolver,
		UserUC:    userUC,
		StoreUC:   storeUC,
		Metrics:   metrics,
		Log:       log,
		APIPrefix: cfg.HTTP.APIPrefix,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
