package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)

	// Protected routes
	api := r.Group("/api/v1")
	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.GET("/tasks/filter", authMiddleware(handlers.Task.FilterTasks))
	api.GET("/tasks/sort", authMiddleware(handlers.Task.SortTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.PUT("/tasks/{id}/status", authMiddleware(handlers.Task.SetStatus))
	api.POST("/tasks/{id}/in_progress", authMiddleware(handlers.Task.StartTask))
	api.POST("/tasks/{id}/done", authMiddleware(handlers.Task.CompleteTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
