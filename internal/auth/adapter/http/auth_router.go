package http

import (
	"panchayat-docstore/internal/auth/usecase"
	"panchayat-docstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface) *AuthHTTPHandler {
	return &AuthHTTPHandler{usecase: uc}
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	router.Post("/login", middleware.RateLimiter(), h.Login)

	router.Get("/me", middleware.Protect(), h.GetCurrentUser)
}

// Login exchanges admin credentials for a bearer token.
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errors.NewValidationError("Invalid request body").WithCause(err))
	}

	session, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"userId":    session.UserID,
		"role":      session.Role,
	})
}

// GetCurrentUser returns the identity carried by the verified bearer token.
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := GetUserID(c)
	if !ok {
		return respondError(c, errors.NewAuthenticationError("Authentication required"))
	}
	role, _ := GetRole(c)
	return c.JSON(fiber.Map{
		"userId": userID,
		"role":   role,
	})
}

func respondError(c *fiber.Ctx, err error) error {
	status := errors.HTTPStatus(err)
	errType := errors.ErrorTypeInternal
	message := "internal server error"
	if appErr, ok := errors.AsAppError(err); ok {
		errType = appErr.Type
		message = appErr.Message
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   errType,
		"message": message,
	})
}
