package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tasknest/core/docs"
	httpHandlers "github.com/tasknest/core/internal/adapters/http"
	"github.com/tasknest/core/internal/adapters/repository"
	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/infrastructure/storage"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
}

type handlers struct {
	auth    *httpHandlers.AuthHandler
	tasks   *httpHandlers.TaskHandler
	tags    *httpHandlers.TagHandler
	folders *httpHandlers.FolderHandler
	uploads *httpHandlers.UploadHandler
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = httpHandlers.NewValidator()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	images, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	folderRepo := repository.NewFolderRepository(db.DB)
	tagRepo := repository.NewTagRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	taskTagRepo := repository.NewTaskTagRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, cfg.Security, appLogger.WithComponent("auth"))
	taskService := services.NewTaskService(taskRepo, tagRepo, taskTagRepo, images, appLogger.WithComponent("tasks"))
	tagService := services.NewTagService(tagRepo, folderRepo, taskRepo, taskTagRepo, appLogger.WithComponent("tags"))
	folderService := services.NewFolderService(folderRepo, tagRepo, appLogger.WithComponent("folders"))
	uploadService := services.NewUploadService(taskRepo, images, authService, cfg.Upload, appLogger.WithComponent("uploads"))

	// Initialize handlers
	h := handlers{
		auth:    httpHandlers.NewAuthHandler(authService, appLogger),
		tasks:   httpHandlers.NewTaskHandler(taskService, appLogger),
		tags:    httpHandlers.NewTagHandler(tagService, appLogger),
		folders: httpHandlers.NewFolderHandler(folderService, appLogger),
		uploads: httpHandlers.NewUploadHandler(uploadService, appLogger),
	}

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics before routes so every route is instrumented
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(h, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", redactToken(values.URI),
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			log := s.logger.WithRequestID(values.RequestID)
			if values.Error != nil && values.Status >= http.StatusInternalServerError {
				fields = append(fields, "error", values.Error.Error())
				log.Errorw("HTTP request failed", fields...)
			} else {
				log.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	// Uploads are the largest bodies the API accepts
	s.echo.Use(middleware.BodyLimit(bodyLimit(s.config.Upload.MaxBytes)))

	s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h handlers, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")
	requireAuth := s.authMiddleware(authService)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.PUT("/update-name", h.auth.UpdateName, requireAuth)
	authGroup.GET("/password", h.auth.GetPassword, requireAuth)
	authGroup.PUT("/change-password", h.auth.ChangePassword, requireAuth)

	// Task routes (authenticated)
	taskGroup := api.Group("/tasks", requireAuth)
	taskGroup.GET("", h.tasks.ListTasks)
	taskGroup.POST("", h.tasks.CreateTask)
	taskGroup.GET("/:id", h.tasks.GetTask)
	taskGroup.PUT("/:id", h.tasks.UpdateTask)
	taskGroup.DELETE("/:id", h.tasks.DeleteTask)

	// Tag routes (authenticated)
	tagGroup := api.Group("/tags", requireAuth)
	tagGroup.GET("", h.tags.ListTags)
	tagGroup.POST("", h.tags.CreateTag)
	tagGroup.GET("/:id", h.tags.GetTag)
	tagGroup.PUT("/:id", h.tags.UpdateTag)
	tagGroup.DELETE("/:id", h.tags.DeleteTag)

	// Folder routes (authenticated)
	folderGroup := api.Group("/folders", requireAuth)
	folderGroup.GET("", h.folders.ListFolders)
	folderGroup.POST("", h.folders.CreateFolder)
	folderGroup.GET("/:id", h.folders.GetFolder)
	folderGroup.PUT("/:id", h.folders.UpdateFolder)
	folderGroup.DELETE("/:id", h.folders.DeleteFolder)

	// Uploads. Images are loaded by <img> tags, which cannot send headers,
	// so the serving route checks a query-string token itself.
	api.POST("/upload", h.uploads.Upload, requireAuth)
	api.GET("/uploads/:filename", h.uploads.ServeImage)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as {"message": ...}
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  = httpHandlers.InternalErrorMessage
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if status := httpHandlers.StatusFor(err); status != http.StatusInternalServerError {
			code = status
			msg = err.Error()
		}

		if code >= http.StatusInternalServerError {
			msg = httpHandlers.InternalErrorMessage
			logger.WithError(err).Errorw("Internal server error", "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, httpHandlers.ErrorResponse{Message: msg})
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}

// bodyLimit leaves room for multipart framing around the largest upload
func bodyLimit(maxUpload int64) string {
	const overheadKB = 1024
	return fmt.Sprintf("%dK", maxUpload/1024+overheadKB)
}
