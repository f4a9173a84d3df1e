package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Godevs04/TeamTaatom-sub013/internal/mocks"
)

func setupAuthRouter(validator *mocks.ValidatorMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt("userID")})
	})
	return r
}

func doAuth(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	validator := new(mocks.ValidatorMock)
	validator.On("ValidateToken", mock.Anything, "good-token").Return(42, nil).Once()

	rec := doAuth(setupAuthRouter(validator), "Bearer good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":42`)
	validator.AssertExpectations(t)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	validator := new(mocks.ValidatorMock)

	rec := doAuth(setupAuthRouter(validator), "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	validator.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareWrongScheme(t *testing.T) {
	validator := new(mocks.ValidatorMock)

	rec := doAuth(setupAuthRouter(validator), "Basic dXNlcjpwYXNz")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	validator.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareRejectedToken(t *testing.T) {
	validator := new(mocks.ValidatorMock)
	validator.On("ValidateToken", mock.Anything, "bad-token").Return(0, assert.AnError).Once()

	rec := doAuth(setupAuthRouter(validator), "Bearer bad-token")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	validator.AssertExpectations(t)
}
