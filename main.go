package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"usersvc/internal/config"
	"usersvc/internal/handlers"
	"usersvc/internal/middleware"
	"usersvc/internal/repositories"
	"usersvc/internal/services"
	"usersvc/internal/validation"
	"usersvc/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

// run owns every long-lived resource so its deferred closes complete before main exits.
func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	configureLogging(cfg)

	// --- Store ---
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	defer sqlDB.Close()

	// --- Cache ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	// --- Optional event publishing ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return fmt.Errorf("initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		logrus.Info("RABBITMQ_URL not set, user created events are disabled")
	}

	validator := validation.NewClient(cfg.ExternalURL, cfg.ValidationTimeout)

	accessLog := logrus.StandardLogger().Writer()
	defer accessLog.Close()

	app := newApp(db, rdb, validator, publisher, accessLog)

	// --- Start HTTP Server ---
	logrus.Info("Starting web server...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(app, cfg.ListenAddr(), quit, cfg.ShutdownTimeout); err != nil {
		return err
	}
	logrus.Info("Server gracefully stopped")
	return nil
}

// serve runs app on addr until quit fires or the listener fails, then shuts down
// within timeout.
func serve(app *fiber.App, addr string, quit <-chan os.Signal, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-quit:
	}

	logrus.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newApp wires the gateways, the service and the handlers into a Fiber app.
func newApp(db *gorm.DB, rdb redis.UniversalClient, validator services.EmailValidator, publisher services.EventPublisher, accessLog io.Writer) *fiber.App {
	userRepo := repositories.NewGORMUserRepository(db)
	userCache := repositories.NewRedisUserCache(rdb)

	userService := services.NewUserService(userRepo, userCache, validator, publisher)

	userHandler := handlers.NewUserHandler(userService)
	healthHandler := handlers.NewHealthHandler(userRepo, userCache)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		AppName:      "usersvc",
	})

	// --- Middleware ---
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))
	app.Use(middleware.Recover())
	app.Use(cors.New())

	// --- Routes ---
	healthHandler.RegisterRoutes(app)
	userHandler.RegisterRoutes(app.Group("/api"))

	app.Hooks().OnListen(func(data fiber.ListenData) error {
		logrus.Infof("Server started on: %s", data.Port)
		return nil
	})

	return app
}

func configureLogging(cfg config.Config) {
	logrus.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
