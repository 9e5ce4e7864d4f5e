package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/handler"
	"github.com/noah-isme/attendance-web/internal/middleware"
	"github.com/noah-isme/attendance-web/internal/service"
	"github.com/noah-isme/attendance-web/pkg/logger"
	reqidmiddleware "github.com/noah-isme/attendance-web/pkg/middleware/requestid"
	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
	"github.com/noah-isme/attendance-web/web"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Attendance *handler.AttendanceHandler
	Report     *handler.ReportHandler
	Metrics    *handler.MetricsHandler
}

// Options configures Setup.
type Options struct {
	Sessions   *session.Manager
	Metrics    *service.MetricsService
	Logger     *zap.Logger
	EnableDocs bool
}

// Setup builds the gin engine with templates, middleware and every route.
func Setup(h Handlers, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", reqidmiddleware.Value(c)),
		)
		response.ErrorPage(c, http.StatusInternalServerError, "Something went wrong!", fmt.Errorf("%v", recovered))
		c.Abort()
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(opts.Sessions.Middleware())

	r.NoRoute(func(c *gin.Context) {
		response.NotFoundPage(c, "Page not found")
	})

	r.StaticFS("/static", http.FS(static))
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/auth")
	{
		auth.GET("/login", middleware.RedirectIfAuthenticated(), h.Auth.ShowLogin)
		auth.POST("/login", middleware.RedirectIfAuthenticated(), h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	authorized := r.Group("")
	authorized.Use(middleware.RequireAuth())
	{
		authorized.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/courses")
		})
		authorized.GET("/dashboard", h.Course.Dashboard)
		authorized.GET("/courses", h.Course.Courses)

		authorized.GET("/attendance/:courseId", h.Attendance.View)
		authorized.POST("/attendance/:courseId", h.Attendance.Submit)
		authorized.DELETE("/attendance/:id", h.Attendance.Delete)

		authorized.POST("/generate-report/:courseId", h.Report.Generate)
		authorized.GET("/reports", h.Report.List)
		authorized.GET("/download-report/:filename", h.Report.Download)
	}

	return r, nil
}
