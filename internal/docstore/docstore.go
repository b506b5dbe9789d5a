package docstore

import (
	"errors"
	"fmt"

	storehttp "panchayat-docstore/internal/docstore/adapter/http"
	"panchayat-docstore/internal/docstore/adapter/persistence/cache"
	"panchayat-docstore/internal/docstore/adapter/persistence/memory"
	"panchayat-docstore/internal/docstore/adapter/persistence/mongodb"
	"panchayat-docstore/internal/docstore/config"
	"panchayat-docstore/internal/docstore/domain/repository"
	"panchayat-docstore/internal/docstore/usecase"
	"panchayat-docstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoutePrefix is where the store routes are mounted.
const RoutePrefix = "/api/store"

// DocstoreModule wires the generic document store.
type DocstoreModule struct {
	Config   *config.StoreConfig
	Registry *usecase.Registry
	Usecase  usecase.DocumentUsecase
	Handler  *storehttp.StoreHandler
	Logger   logger.Logger
}

// NewDocstoreModule builds the module. db may be nil when cfg selects the
// memory driver; redisClient may be nil to disable the list cache.
func NewDocstoreModule(cfg *config.StoreConfig, db *mongo.Database, redisClient *redis.Client, log logger.Logger) (*DocstoreModule, error) {
	if cfg == nil {
		cfg = config.DefaultStoreConfig()
	}

	var factory repository.StoreFactory
	switch cfg.Driver {
	case config.DriverMemory:
		factory = memory.NewFactory()
		log.Warn("Using in-memory store; documents are lost on restart")
	default:
		if db == nil {
			return nil, errors.New("mongo driver selected but no database was provided")
		}
		factory = mongodb.NewStoreFactory(db, log)
	}

	rules, err := usecase.NewAccessRules(cfg.Rules.Read, cfg.Rules.Write)
	if err != nil {
		return nil, fmt.Errorf("failed to compile access rules: %w", err)
	}

	opts := []usecase.Option{
		usecase.WithAccessRules(rules),
		usecase.WithQueryTimeout(cfg.QueryTimeout),
	}
	if redisClient != nil {
		opts = append(opts, usecase.WithCache(cache.NewRedisQueryCache(redisClient, cfg.Redis.CacheTTL, log)))
		log.Infof("List cache enabled (ttl %s)", cfg.Redis.CacheTTL)
	}

	registry := usecase.NewRegistry(factory)
	uc := usecase.NewDocumentUsecase(registry, log, opts...)

	return &DocstoreModule{
		Config:   cfg,
		Registry: registry,
		Usecase:  uc,
		Handler:  storehttp.NewStoreHandler(uc, log),
		Logger:   log,
	}, nil
}

// RegisterRoutes mounts the store under RoutePrefix on router.
func (m *DocstoreModule) RegisterRoutes(router fiber.Router, middleware ...fiber.Handler) {
	m.Handler.RegisterRoutes(router.Group(RoutePrefix), middleware...)
}
