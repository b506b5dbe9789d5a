package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panchayat-docstore/internal/auth"
	authhttp "panchayat-docstore/internal/auth/adapter/http"
	authconfig "panchayat-docstore/internal/auth/config"
	"panchayat-docstore/internal/docstore"
	storeconfig "panchayat-docstore/internal/docstore/config"
	"panchayat-docstore/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        string `env:"PORT" envDefault:"3000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger().WithComponent("server")
	zapLogger := newZapLogger(serverCfg.Environment)
	defer func() { _ = zapLogger.Sync() }()

	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load auth configuration: %v", err)
	}
	storeCfg, err := storeconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load store configuration: %v", err)
	}
	appLogger.Infof("Configuration loaded (driver=%s, database=%s)", storeCfg.Driver, storeCfg.DatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var mongoDB *mongo.Database
	if storeCfg.Driver == storeconfig.DriverMongo {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(storeCfg.MongoDBURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				appLogger.Errorf("Failed to disconnect MongoDB: %v", err)
			}
		}()
		if err := mongoClient.Ping(ctx, nil); err != nil {
			log.Fatalf("Failed to ping MongoDB: %v", err)
		}
		mongoDB = mongoClient.Database(storeCfg.DatabaseName)
		appLogger.Info("MongoDB connection established successfully")
	}

	var redisClient *redis.Client
	if storeCfg.Redis.Enabled() {
		redisClient = storeconfig.NewRedisClient(storeCfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Warnf("Redis at %s unreachable, list cache disabled: %v", storeCfg.Redis.Addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	authModule, err := auth.NewAuthModule(authCfg, zapLogger, authhttp.WithCORSOrigins(serverCfg.CORSOrigins))
	if err != nil {
		log.Fatalf("Failed to initialize auth module: %v", err)
	}
	storeModule, err := docstore.NewDocstoreModule(storeCfg, mongoDB, redisClient, appLogger.WithComponent("docstore"))
	if err != nil {
		log.Fatalf("Failed to initialize docstore module: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Panchayat Docstore",
		Immutable:    true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Errorf("HTTP error on %s %s: %v", c.Method(), c.Path(), err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   "HTTP_ERROR",
				"message": err.Error(),
			})
		},
	})

	mw := authModule.GetMiddleware()
	app.Use(recover.New())
	app.Use(mw.CORS())
	app.Use(mw.RequestID(), authhttp.WithRequestContext())
	app.Use(mw.SecurityHeaders())

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if redisClient != nil {
			if err := redisClient.Ping(healthCtx).Err(); err != nil {
				appLogger.Warnf("Health check: redis ping failed: %v", err)
			}
		}
		if mongoDB != nil {
			if err := mongoDB.Client().Ping(healthCtx, nil); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "UNHEALTHY",
					"error":   err.Error(),
					"message": "MongoDB is unreachable",
				})
			}
		}

		return c.JSON(fiber.Map{
			"status":      "HEALTHY",
			"timestamp":   time.Now().UTC(),
			"driver":      storeCfg.Driver,
			"collections": storeModule.Registry.Names(),
			"login":       authCfg.LoginEnabled(),
		})
	})

	authModule.RegisterRoutes(app)
	storeModule.RegisterRoutes(app, mw.OptionalBearer())
	appLogger.Infof("Routes registered under %s and %s", auth.RoutePrefix, docstore.RoutePrefix)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()
	appLogger.Infof("Listening on %s", serverAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}

func newZapLogger(environment string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "production" || environment == "prod" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
