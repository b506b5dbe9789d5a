package auth

import (
	"fmt"

	authhttp "panchayat-docstore/internal/auth/adapter/http"
	"panchayat-docstore/internal/auth/adapter/persistence/static"
	"panchayat-docstore/internal/auth/adapter/security"
	"panchayat-docstore/internal/auth/config"
	"panchayat-docstore/internal/auth/domain/model"
	"panchayat-docstore/internal/auth/domain/repository"
	"panchayat-docstore/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RoutePrefix is where the auth routes are mounted.
const RoutePrefix = "/api/auth"

// AuthModule represents the complete authentication module
type AuthModule struct {
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance. Without a
// JWT secret the module still serves: login answers 503 and tokens are refused.
func NewAuthModule(cfg *config.Config, log *zap.Logger, opts ...authhttp.MiddlewareOption) (*AuthModule, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var tokenSvc repository.TokenService
	if cfg.LoginEnabled() {
		svc, err := security.NewJWTokenService(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create token service: %w", err)
		}
		tokenSvc = svc
	} else {
		log.Warn("JWT_SECRET_KEY is not set; login is disabled and bearer tokens are refused")
	}

	accounts := static.NewAccountRepository(model.Account{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Role:         cfg.AdminRole,
	})
	authUsecase := usecase.NewAuthUsecase(accounts, tokenSvc, log.Named("auth"))

	opts = append([]authhttp.MiddlewareOption{authhttp.WithRateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow)}, opts...)
	return &AuthModule{
		usecase:    authUsecase,
		handler:    authhttp.NewAuthHTTPHandler(authUsecase),
		middleware: authhttp.NewAuthMiddleware(authUsecase, opts...),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes under RoutePrefix.
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutesWithMiddleware(router.Group(RoutePrefix), am.middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}
