package http

import (
	"context"
	"strings"
	"time"

	"panchayat-docstore/internal/auth/domain/repository"
	"panchayat-docstore/internal/auth/usecase"
	"panchayat-docstore/internal/shared/contextkeys"
	"panchayat-docstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase     usecase.AuthUsecaseInterface
	rateLimit   int
	rateWindow  time.Duration
	corsOrigins string
}

// MiddlewareOption configures an AuthMiddleware.
type MiddlewareOption func(*AuthMiddleware)

// WithRateLimit sets the login rate limit per client.
func WithRateLimit(max int, window time.Duration) MiddlewareOption {
	return func(m *AuthMiddleware) {
		if max > 0 {
			m.rateLimit = max
		}
		if window > 0 {
			m.rateWindow = window
		}
	}
}

// WithCORSOrigins sets the comma-separated list of allowed origins.
func WithCORSOrigins(origins string) MiddlewareOption {
	return func(m *AuthMiddleware) {
		if origins != "" {
			m.corsOrigins = origins
		}
	}
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, opts ...MiddlewareOption) *AuthMiddleware {
	m := &AuthMiddleware{
		usecase:     uc,
		rateLimit:   10,
		rateWindow:  time.Minute,
		corsOrigins: "*",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CORS allows the portal frontend to call the API from the browser.
func (m *AuthMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  m.corsOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + RequestIDHeader,
		ExposeHeaders: RequestIDHeader,
		MaxAge:        86400,
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits login attempts per client IP.
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               m.rateLimit,
		Expiration:        m.rateWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "RATE_LIMITED",
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     RequestIDHeader,
		Generator:  uuid.NewString,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// WithRequestContext copies the request id from Locals into the user context.
// It must run after RequestID.
func WithRequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && id != "" {
			c.SetUserContext(context.WithValue(c.UserContext(), contextkeys.RequestIDKey, id))
		}
		return c.Next()
	}
}

// OptionalBearer verifies a bearer token when one is presented. Requests
// without an Authorization header proceed anonymously; a bad token is 401.
func (m *AuthMiddleware) OptionalBearer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := extractToken(c)
		if !present {
			return c.Next()
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}

		c.SetUserContext(withClaims(c.UserContext(), claims))
		return c.Next()
	}
}

// Protect requires a valid bearer token.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := extractToken(c)
		if !present {
			return respondError(c, errors.NewAuthenticationError("Authentication required"))
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}

		c.SetUserContext(withClaims(c.UserContext(), claims))
		return c.Next()
	}
}

func withClaims(ctx context.Context, claims *repository.Claims) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
	if claims.Role != "" {
		ctx = context.WithValue(ctx, contextkeys.RoleKey, claims.Role)
	}
	return ctx
}

// extractToken reads the Authorization header. present is false when the
// header is absent; a header that is not a bearer token yields "".
func extractToken(c *fiber.Ctx) (token string, present bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", false
	}
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", true
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// GetUserID returns the verified caller of c, if any.
func GetUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetRole returns the role claim of the verified caller of c, if any.
func GetRole(c *fiber.Ctx) (string, bool) {
	role, ok := c.UserContext().Value(contextkeys.RoleKey).(string)
	return role, ok && role != ""
}
