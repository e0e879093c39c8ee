package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/config"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/middleware"
	"github.com/yukikurage/task-rest-api/internal/policy"
	"github.com/yukikurage/task-rest-api/internal/services"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config      *config.Config
	Log         zerolog.Logger
	DB          *gorm.DB
	AuthService *services.AuthService
	TaskService *services.TaskService
	// LoginLimiter throttles the token endpoint. Nil disables throttling.
	LoginLimiter middleware.RateLimiter
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Log), middleware.Metrics())

	healthHandler := NewHealthHandler(deps.DB, deps.Log)
	authHandler := NewAuthHandler(deps.AuthService, deps.Log)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Log)
	requireAuth := middleware.RequireAuth(deps.AuthService, deps.Log)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(deps.Config.APIV1Str)
	{
		login := []gin.HandlerFunc{authHandler.Login}
		if deps.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(deps.LoginLimiter, apierrors.MsgTooManyLogins, deps.Log)}, login...)
		}
		api.POST("/login/access-token", login...)

		users := api.Group("/users")
		{
			users.POST("/", authHandler.Register)
			users.GET("/me/", requireAuth, authHandler.Me)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("/", taskHandler.CreateTask)
			tasks.GET("/", taskHandler.ListTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(deps.TaskService, policy.ActionRead, deps.Log), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskAccess(deps.TaskService, policy.ActionUpdate, deps.Log), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(deps.TaskService, policy.ActionDelete, deps.Log), taskHandler.DeleteTask)
		}
	}

	return r
}
