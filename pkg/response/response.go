package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
)

// ErrorTemplate is the template rendered for error pages.
const ErrorTemplate = "error.html"

// Result is the JSON contract used by endpoints called from page scripts.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON sends a Result with no-store caching headers.
func JSON(c *gin.Context, status int, success bool, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Result{Success: success, Message: message})
}

// Error sends a failed Result derived from the typed error. Unknown errors never leak their text.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	JSON(c, appErr.Status, false, appErr.Message)
}

// Page renders an HTML page with the shared layout data.
func Page(c *gin.Context, status int, name string, data gin.H) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

// ErrorPage renders the error template. The underlying error is only shown outside release mode.
func ErrorPage(c *gin.Context, status int, message string, err error) {
	data := gin.H{"title": "Error", "message": message}
	if err != nil && gin.Mode() != gin.ReleaseMode {
		data["detail"] = err.Error()
	}
	Page(c, status, ErrorTemplate, data)
}

// NotFoundPage renders the 404 page.
func NotFoundPage(c *gin.Context, message string) {
	if message == "" {
		message = "Page not found"
	}
	ErrorPage(c, http.StatusNotFound, message, nil)
}
