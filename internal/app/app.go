// Package app wires configuration, storage, services and HTTP handlers into a
// runnable API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroes/internal/cache"
	"heroes/internal/config"
	"heroes/internal/handlers"
	"heroes/internal/middleware"
	"heroes/internal/models"
	"heroes/internal/repositories"
	"heroes/internal/services"
	"heroes/internal/storage"
	"heroes/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App is a fully wired API server.
type App struct {
	Fiber      *fiber.App
	Characters *services.CharacterService
	Images     *services.ImageService
	Auth       *services.AuthService // nil when auth is disabled

	cfg     config.Config
	mq      *rabbitmq.Client
	closers []func() error
}

type options struct {
	fs afero.Fs
}

// Option customises New.
type Option func(*options)

// WithFs stores local uploads on fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// New builds the server described by cfg. Optional backends (Redis, RabbitMQ)
// that cannot be reached are logged and skipped.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	characterRepo, adminRepo, err := a.openRepositories(cfg.Database)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, character events disabled")
		} else {
			a.mq = mq
			a.closers = append(a.closers, mq.Close)
			publisher = mq
		}
	}

	a.Characters = services.NewCharacterService(characterRepo, publisher, a.statsCache(ctx, cfg.Redis))
	if cfg.Database.Seed {
		n, err := a.Characters.Seed(ctx, seedCharacters())
		if err != nil {
			return nil, fmt.Errorf("failed to seed characters: %w", err)
		}
		if n > 0 {
			log.Info().Int("count", n).Msg("seeded initial characters")
		}
	}

	if cfg.Auth.Enabled {
		a.Auth = services.NewAuthService(adminRepo, cfg.Auth.JWTSecret)
		created, err := a.Auth.EnsureBootstrapAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			log.Info().Str("username", cfg.Auth.AdminUsername).Msg("created bootstrap admin")
		}
	}

	store, err := openImageStore(ctx, cfg.Storage, o.fs)
	if err != nil {
		return nil, err
	}
	a.Images = services.NewImageService(store, storage.NewImageProcessor(cfg.Storage.MaxBytes), "/uploads")

	a.Fiber = a.newFiber()
	ok = true
	return a, nil
}

func (a *App) openRepositories(cfg config.DatabaseConfig) (repositories.CharacterRepository, repositories.AdminRepository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "memory":
		return repositories.NewMemoryCharacterRepository(), repositories.NewMemoryAdminRepository(), nil
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := db.AutoMigrate(&models.Character{}, &models.Admin{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	log.Info().Str("driver", cfg.Driver).Msg("database ready")

	return repositories.NewGORMCharacterRepository(db), repositories.NewGORMAdminRepository(db), nil
}

func (a *App) statsCache(ctx context.Context, cfg config.RedisConfig) cache.StatsCache {
	if cfg.Addr == "" {
		return cache.NewMemory(cfg.StatsTTL)
	}
	client := cache.NewRedisClient(cfg.Addr, cfg.Password, cfg.DB)
	if err := cache.Connect(ctx, client); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process stats cache")
		client.Close()
		return cache.NewMemory(cfg.StatsTTL)
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewRedisStats(client, cfg.StatsTTL)
}

func openImageStore(ctx context.Context, cfg config.StorageConfig, fs afero.Fs) (storage.ImageStore, error) {
	switch cfg.Driver {
	case "minio":
		return storage.NewMinIOStore(ctx, cfg.MinIO)
	case "local":
		return storage.NewLocalStore(fs, cfg.Dir)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

func (a *App) newFiber() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "heroes",
		ErrorHandler: handlers.ErrorHandler,
		// Room for the multipart envelope around a maximum size upload.
		BodyLimit:    int(a.cfg.Storage.MaxBytes) + 2<<20,
		UnescapePath: true,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: a.cfg.CORS.Origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization",
		MaxAge:       int((12 * time.Hour).Seconds()),
	}))

	app.Get("/health", a.handleHealth)

	auth := middleware.AuthRequired(a.Auth)
	api := app.Group("/api")
	handlers.NewCharacterHandler(a.Characters).RegisterRoutes(api, auth, middleware.SanitizeJSON())
	uploads := handlers.NewUploadHandler(a.Images, a.cfg.Storage.MaxBytes)
	uploads.RegisterRoutes(api, auth)
	uploads.RegisterPublicRoutes(app)
	if a.Auth != nil {
		handlers.NewAuthHandler(a.Auth).RegisterRoutes(api)
	}
	return app
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	events := "disabled"
	if a.mq != nil {
		events = "connected"
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": a.cfg.Database.Driver,
		"storage":  a.cfg.Storage.Driver,
		"events":   events,
		"auth":     a.Auth != nil,
	})
}

// StartConsumers runs the audit consumer for character events when a broker
// is connected.
func (a *App) StartConsumers() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeCharacterEvents(rabbitmq.AuditCharacterEvent)
}

// Listen serves HTTP on addr until Shutdown is called.
func (a *App) Listen(addr string) error {
	return a.Fiber.Listen(addr)
}

// Shutdown stops the HTTP server and releases every backend.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		errs = append(errs, a.Fiber.Shutdown())
	}
	errs = append(errs, a.Close())
	return errors.Join(errs...)
}

// Close releases database, cache and broker connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
