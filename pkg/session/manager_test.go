package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/login", func(c *gin.Context) {
		sess := FromContext(c)
		if err := sess.Login(Identity{InstructorID: 3, InstructorName: "Ada", InstructorEmail: "ada@uni.edu"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		_ = sess.AddFlash(FlashSuccess, "welcome")
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		sess := FromContext(c)
		identity, ok := sess.Identity()
		flash, _ := sess.TakeFlash()
		c.JSON(http.StatusOK, gin.H{"ok": ok, "name": identity.InstructorName, "flash": flash.Success})
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = FromContext(c).Destroy()
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestManagerLoginFlashAndLogout(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, Options{Secret: "secret", TTL: time.Hour, Secure: true}, nil)
	r := newTestEngine(m)

	w := do(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "attendance_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	w = do(r, http.MethodGet, "/me", cookies)
	assert.JSONEq(t, `{"ok":true,"name":"Ada","flash":"welcome"}`, w.Body.String())

	w = do(r, http.MethodGet, "/me", cookies)
	assert.JSONEq(t, `{"ok":true,"name":"Ada","flash":""}`, w.Body.String())

	w = do(r, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/me", cookies)
	assert.JSONEq(t, `{"ok":false,"name":"","flash":""}`, w.Body.String())
}

func TestManagerIgnoresForgedCookie(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, Options{Secret: "secret", TTL: time.Hour}, nil)
	r := newTestEngine(m)

	forged, err := NewCodec("attacker", time.Hour).Encode("victim")
	require.NoError(t, err)
	require.NoError(t, store.SetIdentity(context.Background(), "victim", Identity{InstructorID: 9}, time.Hour))

	w := do(r, http.MethodGet, "/me", []*http.Cookie{{Name: "attendance_session", Value: forged}})
	assert.JSONEq(t, `{"ok":false,"name":"","flash":""}`, w.Body.String())
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	sess := FromContext(c)
	assert.False(t, sess.Authenticated())
	assert.Error(t, sess.AddFlash(FlashError, "x"))
	flash, err := sess.TakeFlash()
	assert.NoError(t, err)
	assert.True(t, flash.Empty())
}
