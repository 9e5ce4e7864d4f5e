package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
)

// ContextInstructorKey is the gin context key storing the authenticated session.Identity.
const ContextInstructorKey = "currentInstructor"

const (
	loginPath     = "/auth/login"
	dashboardPath = "/dashboard"
)

// RequireAuth lets authenticated instructors through. Page requests without a session are
// redirected to the login page; script requests get a 401 JSON result instead.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := session.FromContext(c).Identity()
		if !ok {
			if wantsJSON(c) {
				response.JSON(c, http.StatusUnauthorized, false, "Authentication required")
			} else {
				c.Redirect(http.StatusFound, loginPath)
			}
			c.Abort()
			return
		}

		c.Set(ContextInstructorKey, identity)
		c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in instructors away from the login page.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromContext(c).Authenticated() {
			c.Redirect(http.StatusFound, dashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentInstructor returns the identity set by RequireAuth.
func CurrentInstructor(c *gin.Context) (session.Identity, bool) {
	value, exists := c.Get(ContextInstructorKey)
	if !exists {
		return session.Identity{}, false
	}
	identity, ok := value.(session.Identity)
	return identity, ok
}

func wantsJSON(c *gin.Context) bool {
	if c.Request.Method == http.MethodDelete {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
