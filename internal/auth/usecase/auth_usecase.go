package usecase

import (
	"context"
	stderrors "errors"
	"strings"

	"panchayat-docstore/internal/auth/domain/model"
	"panchayat-docstore/internal/auth/domain/repository"
	"panchayat-docstore/internal/shared/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Login(ctx context.Context, req LoginRequest) (*model.Session, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	accounts repository.AccountRepository
	tokenSvc repository.TokenService
	log      *zap.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase. A nil tokenSvc means
// login is disabled: Login answers unavailable and every token is rejected.
func NewAuthUsecase(accounts repository.AccountRepository, tokenSvc repository.TokenService, log *zap.Logger) *AuthUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{
		accounts: accounts,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.Session, error) {
	if uc.tokenSvc == nil {
		return nil, errors.NewUnavailableError("login is disabled: JWT_SECRET_KEY is not set")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, errors.NewValidationError("username and password are required")
	}

	account, err := uc.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.IsAuthentication(err) {
			uc.log.Info("login rejected", zap.String("username", username))
			return nil, invalidCredentials()
		}
		return nil, errors.WrapError(err, "failed to look up account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		uc.log.Info("login rejected", zap.String("username", username))
		return nil, invalidCredentials()
	}

	token, expiresAt, err := uc.tokenSvc.GenerateToken(ctx, account.Username, account.Role)
	if err != nil {
		uc.log.Error("sign token", zap.Error(err))
		return nil, errors.NewInternalError("failed to issue token").WithCause(err)
	}

	uc.log.Info("login", zap.String("username", account.Username), zap.Time("expiresAt", expiresAt))
	return &model.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    account.Username,
		Role:      account.Role,
	}, nil
}

func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if uc.tokenSvc == nil {
		return nil, errors.NewAuthenticationError("tokens are not accepted: login is disabled").
			WithCause(errors.ErrInvalidToken)
	}
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		msg := "invalid token"
		if stderrors.Is(err, errors.ErrTokenExpired) {
			msg = "token expired"
		}
		return nil, errors.NewAuthenticationError(msg).WithCause(err)
	}
	return claims, nil
}

func invalidCredentials() error {
	return errors.NewAuthenticationError("invalid username or password").WithCause(errors.ErrInvalidCredentials)
}
