package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-web/internal/middleware"
	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
)

type authServiceMock struct {
	instructor *models.Instructor
	err        error
	requests   []models.LoginRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.Instructor, error) {
	m.requests = append(m.requests, req)
	return m.instructor, m.err
}

func newAuthClient(t *testing.T, svc *authServiceMock) *testClient {
	h := NewAuthHandler(svc, nil)
	return newTestClient(t, func(public, protected *gin.RouterGroup) {
		public.GET("/auth/login", middleware.RedirectIfAuthenticated(), h.ShowLogin)
		public.POST("/auth/login", middleware.RedirectIfAuthenticated(), h.Login)
		public.POST("/auth/logout", h.Logout)
		protected.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	})
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	svc := &authServiceMock{instructor: &models.Instructor{ID: 7, Email: "ada@uni.edu", Name: "Ada Lovelace"}}
	client := newAuthClient(t, svc)

	w := client.do(http.MethodPost, "/auth/login", url.Values{"email": {"ada@uni.edu"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.Len(t, svc.requests, 1)
	assert.Equal(t, "secret", svc.requests[0].Password)

	w = client.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = client.do(http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAuthHandlerLoginFailureFlashesOnce(t *testing.T) {
	svc := &authServiceMock{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")}
	client := newAuthClient(t, svc)

	w := client.do(http.MethodPost, "/auth/login", url.Values{"email": {"ada@uni.edu"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	w = client.do(http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = client.do(http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Invalid email or password")

	w = client.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestAuthHandlerLogout(t *testing.T) {
	svc := &authServiceMock{instructor: &models.Instructor{ID: 7, Email: "ada@uni.edu", Name: "Ada Lovelace"}}
	client := newAuthClient(t, svc)
	client.do(http.MethodPost, "/auth/login", url.Values{"email": {"ada@uni.edu"}, "password": {"secret"}})

	w := client.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	w = client.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = client.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}
