package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/Agenda-api/docs"
	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/application/auth"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Agenda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Agenda-api/internal/interfaces/http"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// @title						Agenda API
// @version					1.0
// @description				API de agenda corporativa: usuarios, sectores, eventos y bitácora.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.App.MigrationsAuto {
		if err := migrateUp(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	db, txRunner := postgres.NewStore(pool, cfg.DB)
	userRepo := postgres.NewUserRepository(db)
	sectorRepo := postgres.NewSectorRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	provider := policy.NewProvider(sectorRepo, cfg.Access.ExecutiveSectors)
	authUC := auth.NewAuthUseCase(userRepo, auditRepo, provider, auth.NewRevocations(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	userUC := usecase.NewUserUseCase(userRepo, txRunner, provider, log)
	sectorUC := usecase.NewSectorUseCase(sectorRepo, userRepo, txRunner, provider, log)
	auditUC := usecase.NewAuditUseCase(auditRepo, log)

	// PDF: agenda exportable
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	eventUC := agenda.NewEventUseCase(eventRepo, txRunner, provider, pdfGenerator, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Agenda API",
	}))

	// Documento OpenAPI registrado por el paquete docs
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		SectorUC:  sectorUC,
		AuditUC:   auditUC,
		EventUC:   eventUC,
		Health:    pool,
		JWTSecret: cfg.JWT.Secret,
		AppName:   cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func migrateUp(dsn string) error {
	m, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
