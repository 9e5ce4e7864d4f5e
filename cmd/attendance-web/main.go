package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-web/api/swagger"
	"github.com/noah-isme/attendance-web/internal/handler"
	"github.com/noah-isme/attendance-web/internal/repository"
	"github.com/noah-isme/attendance-web/internal/router"
	"github.com/noah-isme/attendance-web/internal/service"
	"github.com/noah-isme/attendance-web/pkg/cache"
	"github.com/noah-isme/attendance-web/pkg/config"
	"github.com/noah-isme/attendance-web/pkg/database"
	"github.com/noah-isme/attendance-web/pkg/export"
	"github.com/noah-isme/attendance-web/pkg/logger"
	"github.com/noah-isme/attendance-web/pkg/session"
	"github.com/noah-isme/attendance-web/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	logger.LogConfigSummary(logr, cfg)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open database pool", zap.Error(err))
	}
	defer db.Close()

	if err := database.Ping(context.Background(), db, 5*time.Second); err != nil {
		category := database.Classify(err)
		logr.Warn("database not reachable at startup",
			zap.String("category", string(category)),
			zap.String("hint", category.Message()),
			zap.Error(err),
		)
	} else if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	sessionStore := newSessionStore(cfg, logr)

	reportStore, err := storage.NewLocalStorage(cfg.Reports.Dir)
	if err != nil {
		logr.Fatal("failed to prepare reports directory", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	if err := metrics.RegisterDBStats(db.DB, cfg.Database.Name); err != nil {
		logr.Warn("failed to register database metrics", zap.Error(err))
	}

	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc, err := service.NewAuthService(instructorRepo, validator.New(), logr)
	if err != nil {
		logr.Fatal("failed to build auth service", zap.Error(err))
	}
	courseSvc := service.NewCourseService(courseRepo)
	attendanceSvc := service.NewAttendanceService(courseSvc, attendanceRepo, metrics, logr)
	reportSvc := service.NewReportService(courseSvc, attendanceRepo, reportStore, export.NewPDFExporter(), metrics, logr)

	sessions := session.NewManager(sessionStore, session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.SecureCookie,
	}, logr)

	r, err := router.Setup(router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, logr),
		Course:     handler.NewCourseHandler(courseSvc, logr),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, logr),
		Report:     handler.NewReportHandler(reportSvc, logr),
		Metrics:    handler.NewMetricsHandler(metrics, db, logr),
	}, router.Options{
		Sessions:   sessions,
		Metrics:    metrics,
		Logger:     logr,
		EnableDocs: cfg.Env != config.EnvProduction,
	})
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newSessionStore prefers Redis when configured and falls back to process memory.
func newSessionStore(cfg *config.Config, logr *zap.Logger) session.Store {
	if cfg.Session.Store != config.SessionStoreRedis {
		return session.NewMemoryStore()
	}
	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory sessions", zap.Error(err))
		return session.NewMemoryStore()
	}
	logr.Info("using redis session store", zap.String("addr", client.Options().Addr))
	return session.NewRedisStore(client, "attendance:session:")
}
