// Package api is an in-memory implementation of the project-management REST
// API. It backs the gateway and command tests with the same routes, auth
// rules and response shapes as the real server.
package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pmtool/pmctl/internal/api/handler"
	"github.com/pmtool/pmctl/internal/api/middleware"
	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

// Config holds the router dependencies.
type Config struct {
	Store     *store.Store
	JWTSecret string
	TokenTTL  time.Duration
	// Stories generates AI user stories. Nil answers 503.
	Stories handler.StoryGenerator
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Pre(echomiddleware.RemoveTrailingSlash())

	// --- Dependencies ---
	st := cfg.Store
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret, cfg.TokenTTL)
	userHandler := handler.NewUserHandler(st)
	projectHandler := handler.NewProjectHandler(st)
	taskHandler := handler.NewTaskHandler(st)
	reportHandler := handler.NewReportHandler(st)
	aiHandler := handler.NewAIHandler(st, cfg.Stories)
	authMiddleware := middleware.Auth(cfg.JWTSecret)
	planners := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)
	admins := middleware.RBAC(domain.RoleAdmin)

	// --- Health probe (no auth required) ---
	e.GET("/", handler.NewHealthHandler().Liveness)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)

	// --- Protected routes ---
	users := e.Group("/api/users", authMiddleware)
	users.GET("", userHandler.List)
	users.GET("/profile", userHandler.Profile)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create, admins)
	users.PUT("/:id", userHandler.Update, admins)
	users.DELETE("/:id", userHandler.Delete, admins)

	projects := e.Group("/api/projects", authMiddleware)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", projectHandler.Create, planners)
	projects.PUT("/:id", projectHandler.Update, planners)
	projects.DELETE("/:id", projectHandler.Delete, planners)
	projects.POST("/:id/team", projectHandler.AddTeamMember, planners)
	projects.DELETE("/:id/team/:userId", projectHandler.RemoveTeamMember, planners)

	tasks := e.Group("/api/tasks", authMiddleware)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.POST("", taskHandler.Create, planners)
	tasks.PUT("/:id", taskHandler.Update, planners)
	tasks.DELETE("/:id", taskHandler.Delete, planners)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
	tasks.POST("/:id/comments", taskHandler.AddComment)

	reports := e.Group("/api/reports", authMiddleware)
	reports.GET("/dashboard", reportHandler.Dashboard)
	reports.GET("/tasks-by-status", reportHandler.TasksByStatus)
	reports.GET("/overdue-tasks", reportHandler.OverdueTasks)
	reports.GET("/user-workload", reportHandler.UserWorkload)

	ai := e.Group("/api/ai", authMiddleware)
	ai.POST("/generate-user-stories", aiHandler.GenerateUserStories)
	ai.GET("/user-stories/:projectId", aiHandler.ListUserStories)

	return e
}
