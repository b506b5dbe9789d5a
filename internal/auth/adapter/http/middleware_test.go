package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "panchayat-docstore/internal/auth/adapter/http"
	"panchayat-docstore/internal/auth/domain/repository"
	"panchayat-docstore/internal/shared/contextkeys"
	"panchayat-docstore/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockAuthUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockAuthUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC)
	suite.app = fiber.New()
}

// whoami echoes the caller the middleware put into the user context.
func whoami(c *fiber.Ctx) error {
	userID, authenticated := authhttp.GetUserID(c)
	role, _ := c.UserContext().Value(contextkeys.RoleKey).(string)
	return c.JSON(fiber.Map{"user_id": userID, "role": role, "authenticated": authenticated})
}

func (suite *MiddlewareTestSuite) get(path, authorization string) (int, map[string]interface{}) {
	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func (suite *MiddlewareTestSuite) TestOptionalBearer_Anonymous() {
	suite.app.Get("/store", suite.middleware.OptionalBearer(), whoami)

	status, body := suite.get("/store", "")
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Equal(suite.T(), false, body["authenticated"])
	suite.mockUC.AssertNotCalled(suite.T(), "ValidateToken", mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestOptionalBearer_ValidToken() {
	suite.app.Get("/store", suite.middleware.OptionalBearer(), whoami)
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{UserID: "admin", Role: "admin"}, nil)

	status, body := suite.get("/store", "Bearer valid-token")
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Equal(suite.T(), "admin", body["user_id"])
	assert.Equal(suite.T(), "admin", body["role"])
	assert.Equal(suite.T(), true, body["authenticated"])
}

func (suite *MiddlewareTestSuite) TestOptionalBearer_InvalidToken() {
	suite.app.Get("/store", suite.middleware.OptionalBearer(), whoami)
	suite.mockUC.On("ValidateToken", mock.Anything, "stale").
		Return(nil, errors.NewAuthenticationError("token expired").WithCause(errors.ErrTokenExpired))

	status, body := suite.get("/store", "bearer stale")
	assert.Equal(suite.T(), http.StatusUnauthorized, status)
	assert.Equal(suite.T(), "AUTHENTICATION_ERROR", body["error"])
	assert.Equal(suite.T(), "token expired", body["message"])
}

func (suite *MiddlewareTestSuite) TestOptionalBearer_NotABearerHeader() {
	suite.app.Get("/store", suite.middleware.OptionalBearer(), whoami)
	suite.mockUC.On("ValidateToken", mock.Anything, "").
		Return(nil, errors.NewAuthenticationError("invalid token").WithCause(errors.ErrInvalidToken))

	status, _ := suite.get("/store", "Basic YWRtaW46eA==")
	assert.Equal(suite.T(), http.StatusUnauthorized, status)
}

func (suite *MiddlewareTestSuite) TestProtect_RequiresToken() {
	suite.app.Get("/private", suite.middleware.Protect(), whoami)

	status, body := suite.get("/private", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, status)
	assert.Equal(suite.T(), "Authentication required", body["message"])
}

func (suite *MiddlewareTestSuite) TestRequestID_ReachesUserContext() {
	suite.app.Use(suite.middleware.RequestID(), authhttp.WithRequestContext())
	suite.app.Get("/id", func(c *fiber.Ctx) error {
		id, _ := c.UserContext().Value(contextkeys.RequestIDKey).(string)
		return c.SendString(id)
	})

	req := httptest.NewRequest("GET", "/id", nil)
	req.Header.Set(authhttp.RequestIDHeader, "req-42")
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "req-42", resp.Header.Get(authhttp.RequestIDHeader))

	body, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "req-42", string(body))
}

func (suite *MiddlewareTestSuite) TestSecurityHeaders() {
	suite.app.Use(suite.middleware.SecurityHeaders())
	suite.app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := suite.app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(suite.T(), "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
