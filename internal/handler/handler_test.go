package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-web/internal/middleware"
	"github.com/noah-isme/attendance-web/pkg/session"
	"github.com/noah-isme/attendance-web/web"
)

var testIdentity = session.Identity{InstructorID: 7, InstructorName: "Ada Lovelace", InstructorEmail: "ada@uni.edu"}

// testClient replays cookies between requests like a browser would.
type testClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, register func(public, protected *gin.RouterGroup)) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := web.Templates()
	require.NoError(t, err)
	manager := session.NewManager(session.NewMemoryStore(), session.Options{Secret: "handler-test", TTL: time.Hour}, nil)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(manager.Middleware())
	r.POST("/test-login", func(c *gin.Context) {
		if err := session.FromContext(c).Login(testIdentity); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	protected := r.Group("", middleware.RequireAuth())
	register(&r.RouterGroup, protected)

	return &testClient{t: t, engine: r, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) login() {
	w := tc.do(http.MethodPost, "/test-login", nil)
	require.Equal(tc.t, http.StatusNoContent, w.Code)
}

func (tc *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	tc.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(tc.cookies, ck.Name)
			continue
		}
		tc.cookies[ck.Name] = ck
	}
	return w
}
