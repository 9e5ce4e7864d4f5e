package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-web/pkg/session"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(session.NewMemoryStore(), session.Options{Secret: "test-secret", TTL: time.Hour}, nil)

	r := gin.New()
	r.Use(manager.Middleware())
	r.POST("/login-as", func(c *gin.Context) {
		err := session.FromContext(c).Login(session.Identity{InstructorID: 9, InstructorName: "Grace", InstructorEmail: "grace@uni.edu"})
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/auth/login", RedirectIfAuthenticated(), func(c *gin.Context) { c.String(http.StatusOK, "login") })

	protected := r.Group("/", RequireAuth())
	protected.GET("/courses", func(c *gin.Context) {
		identity, ok := CurrentInstructor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, identity.InstructorName)
	})
	protected.DELETE("/attendance/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRedirectsAnonymousPages(t *testing.T) {
	r := newAuthEngine()

	w := serve(r, http.MethodGet, "/courses", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestRequireAuthRejectsAnonymousScripts(t *testing.T) {
	r := newAuthEngine()

	w := serve(r, http.MethodDelete, "/attendance/1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authentication required"}`, w.Body.String())
}

func TestAuthenticatedFlow(t *testing.T) {
	r := newAuthEngine()

	login := serve(r, http.MethodPost, "/login-as", nil)
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	w := serve(r, http.MethodGet, "/courses", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Grace", w.Body.String())

	w = serve(r, http.MethodGet, "/auth/login", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
